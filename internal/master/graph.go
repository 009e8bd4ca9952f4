package master

import (
	"fmt"

	"github.com/cbegin/kunquat-go/internal/devicegraph"
	"github.com/cbegin/kunquat-go/internal/module"
	"github.com/cbegin/kunquat-go/internal/proc"
)

// audioUnitRuntime is one AudioUnit's built device graph plus the
// per-Kind processor index lookup master.go needs to drive note-on
// voice spawning and control dispatch (spec.md §4.7).
type audioUnitRuntime struct {
	graph      *devicegraph.Graph
	lifecycles []proc.Lifecycle
	kinds      []module.ProcessorKind
	producing  []int // proc indices that emit a per-voice signal
	byKind     map[module.ProcessorKind][]int
	outProc    int // terminal processor feeding the master stereo mix
	outPortL   int
	outPortR   int
	numProcs   int
}

// buildRuntime constructs a devicegraph.Graph from an AudioUnit's
// processor table and connection list, the way internal/master wires
// the module-loader's decoupled ProcessorKind/ConnectionSpec data into
// concrete internal/proc instances and an internal/devicegraph.Graph.
//
// Parameter conventions (this engine's own, since ProcessorSpec carries
// only untyped Maps/NumLists/Envelopes/Samples bags):
//
//	filter:     Maps["mode"] (0=lowpass,1=highpass), Maps["cutoff"], Maps["resonance"]
//	bitcrusher: Maps["cutoff"], Maps["resolution"], Maps["ignore_min"]
//	oscillator: Maps["wave"], Maps["noise_order"]
//	envgen:     Envelopes["time"], Envelopes["force"], Maps["y_min"], Maps["y_max"], Maps["loop"], Maps["scale_amount"]
//	force:      Envelopes["force"], Envelopes["release"], Maps["force_env_scale_pitch"]
//	sample:     Samples["sample"]
//	freeverb:   Maps["room_size"], Maps["damp"], Maps["refl"], Maps["stereo"]
//	looper:     Maps["max_seconds"]
//	chorus:     NumLists["delay"], NumLists["range"], NumLists["speed"], NumLists["volume"] (parallel, one entry per voice)
func buildRuntime(au *module.AudioUnit, maxVoices, bufferSize int, audioRate int32) (*audioUnitRuntime, error) {
	g := devicegraph.New(maxVoices, bufferSize)
	rt := &audioUnitRuntime{graph: g, byKind: make(map[module.ProcessorKind][]int)}

	for _, spec := range au.Processors {
		p, lc, err := buildProcessor(spec, maxVoices)
		if err != nil {
			return nil, fmt.Errorf("master: audio unit %q processor %q: %w", au.Name, spec.Name, err)
		}
		lc.SetAudioRate(audioRate)
		lc.SetBufferSize(bufferSize)
		idx := g.AddProcessor(p)
		rt.lifecycles = append(rt.lifecycles, lc)
		rt.kinds = append(rt.kinds, spec.Kind)
		rt.byKind[spec.Kind] = append(rt.byKind[spec.Kind], idx)
		if spec.Produces {
			rt.producing = append(rt.producing, idx)
		}
	}

	for _, c := range au.Connections {
		g.Connect(c.FromProc, c.FromPort, c.ToProc, c.ToPort)
	}

	rt.numProcs = len(au.Processors)
	if n := rt.numProcs; n > 0 {
		rt.outProc = n - 1
		rt.outPortL = 0
		rt.outPortR = 0
		if au.Processors[n-1].Kind == module.ProcFreeverb {
			rt.outPortR = 1
		}
	}

	return rt, nil
}

func buildProcessor(spec module.ProcessorSpec, maxVoices int) (devicegraph.Processor, proc.Lifecycle, error) {
	switch spec.Kind {
	case module.ProcPitch:
		p := proc.NewPitch(maxVoices)
		return p, p, nil

	case module.ProcForce:
		p := proc.NewForce(maxVoices)
		force := spec.Envelopes["force"]
		release := spec.Envelopes["release"]
		if force != nil || release != nil {
			p.SetEnvelopes(force, release, spec.Maps["force_env_scale_pitch"] != 0)
		}
		return p, p, nil

	case module.ProcOscillator:
		wave := proc.Waveform(int(spec.Maps["wave"]))
		p := proc.NewOscillator(maxVoices, wave)
		if order, ok := spec.Maps["noise_order"]; ok {
			p.SetNoiseOrder(int(order))
		}
		return p, p, nil

	case module.ProcSample:
		p := proc.NewSample(maxVoices)
		if s, ok := spec.Samples["sample"]; ok {
			p.SetData(s)
		}
		return p, p, nil

	case module.ProcEnvGen:
		p := proc.NewEnvGen(maxVoices)
		yMin, yMax := spec.Maps["y_min"], spec.Maps["y_max"]
		if yMax == 0 {
			yMax = 1
		}
		p.Configure(spec.Envelopes["time"], spec.Envelopes["force"], yMin, yMax, spec.Maps["loop"] != 0, spec.Maps["scale_amount"])
		return p, p, nil

	case module.ProcBitcrusher:
		p := proc.NewBitcrusher(maxVoices)
		res := spec.Maps["resolution"]
		if res == 0 {
			res = 24
		}
		p.Configure(spec.Maps["cutoff"], res, spec.Maps["ignore_min"] != 0)
		return p, p, nil

	case module.ProcFilter:
		mode := proc.FilterMode(int(spec.Maps["mode"]))
		p := proc.NewFilter(maxVoices, mode)
		cutoff := spec.Maps["cutoff"]
		if cutoff == 0 {
			cutoff = 1
		}
		p.Configure(cutoff, spec.Maps["resonance"])
		return p, p, nil

	case module.ProcFreeverb:
		p := proc.NewFreeverb()
		roomSize := float32(spec.Maps["room_size"])
		if roomSize == 0 {
			roomSize = 0.5
		}
		damp := float32(spec.Maps["damp"])
		if damp == 0 {
			damp = 0.5
		}
		refl := float32(spec.Maps["refl"])
		if refl == 0 {
			refl = 20
		}
		p.Configure(roomSize, damp, refl, int(spec.Maps["stereo"]))
		return p, p, nil

	case module.ProcChorus:
		p := proc.NewChorus()
		delays := spec.NumLists["delay"]
		ranges := spec.NumLists["range"]
		speeds := spec.NumLists["speed"]
		volumes := spec.NumLists["volume"]
		for i := range delays {
			var rangeSec, speedHz, volumeDB float64
			if i < len(ranges) {
				rangeSec = ranges[i]
			}
			if i < len(speeds) {
				speedHz = speeds[i]
			}
			if i < len(volumes) {
				volumeDB = volumes[i]
			}
			p.ConfigureVoice(i, delays[i], rangeSec, speedHz, volumeDB)
		}
		return p, p, nil

	case module.ProcLooper:
		seconds := spec.Maps["max_seconds"]
		if seconds == 0 {
			seconds = 4
		}
		p := proc.NewLooper(seconds)
		return p, p, nil

	case module.ProcAmplify:
		p := proc.NewAmplify()
		return p, p, nil
	}
	return nil, nil, fmt.Errorf("unknown processor kind %q", spec.Kind)
}
