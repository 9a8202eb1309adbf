package engine

import (
	"fmt"
	"runtime"
	"strconv"
	"strings"

	"github.com/swatinair123/OSprayLoadObj/log"
	"github.com/swatinair123/OSprayLoadObj/tracer"
)

// Prefix shared by all command line flags consumed by Init.
const flagPrefix = "--osp:"

// A Device owns the tracer pool that executes render passes. All engine
// objects are created through a Device.
type Device struct {
	logger log.Logger

	// Number of tracer workers.
	numThreads int

	// Debug mode forces a single tracer.
	debug bool

	tracers   []tracer.Tracer
	scheduler tracer.BlockScheduler
}

// Initialize the engine. Init consumes the engine flags it recognizes from
// args and returns the remaining arguments (args[0] is preserved). The
// supported flags are:
//
//	--osp:debug              debug logging and a single tracer
//	--osp:verbose            info logging
//	--osp:vv                 debug logging
//	--osp:numthreads <n>     number of tracers (also --osp:numthreads=<n>)
//	--osp:loglevel <n>       verbosity 0 (errors) to 4 (debug)
//
// Unknown --osp: flags are dropped with a warning. On failure the returned
// error wraps a Status; see StatusOf.
func Init(args []string) (*Device, []string, error) {
	dev := &Device{
		logger:     log.New("engine"),
		numThreads: runtime.NumCPU(),
	}

	rest := make([]string, 0, len(args))
	for idx := 0; idx < len(args); idx++ {
		arg := args[idx]
		if idx == 0 || !strings.HasPrefix(arg, flagPrefix) {
			rest = append(rest, arg)
			continue
		}

		name := strings.TrimPrefix(arg, flagPrefix)
		value, hasValue := "", false
		if eqIndex := strings.IndexByte(name, '='); eqIndex != -1 {
			name, value, hasValue = name[:eqIndex], name[eqIndex+1:], true
		}

		// Fetch the value for flags that require one
		takeValue := func() (string, error) {
			if hasValue {
				return value, nil
			}
			if idx+1 >= len(args) {
				return "", fmt.Errorf("%w: %s%s requires a value", InvalidArgument, flagPrefix, name)
			}
			idx++
			return args[idx], nil
		}

		switch name {
		case "debug":
			dev.debug = true
			dev.numThreads = 1
			log.SetLevel(log.Debug)
		case "verbose":
			log.SetLevel(log.Info)
		case "vv":
			log.SetLevel(log.Debug)
		case "numthreads":
			v, err := takeValue()
			if err != nil {
				return nil, nil, err
			}
			n, err := strconv.Atoi(v)
			if err != nil || n <= 0 {
				return nil, nil, fmt.Errorf("%w: %snumthreads expects a positive integer; got %q", InvalidArgument, flagPrefix, v)
			}
			dev.numThreads = n
		case "loglevel":
			v, err := takeValue()
			if err != nil {
				return nil, nil, err
			}
			n, err := strconv.Atoi(v)
			if err != nil {
				return nil, nil, fmt.Errorf("%w: %sloglevel expects an integer; got %q", InvalidArgument, flagPrefix, v)
			}
			level, err := log.LevelFromVerbosity(n)
			if err != nil {
				return nil, nil, fmt.Errorf("%w: %v", InvalidArgument, err)
			}
			log.SetLevel(level)
		default:
			dev.logger.Warningf("ignoring unknown engine flag %q", arg)
		}
	}

	if dev.debug {
		dev.numThreads = 1
	}

	dev.tracers = make([]tracer.Tracer, dev.numThreads)
	for idx := range dev.tracers {
		dev.tracers[idx] = tracer.NewCPUTracer(fmt.Sprintf("cpu-%02d", idx), 1)
	}
	dev.scheduler = tracer.PerfectScheduler()
	dev.logger.Debugf("initialized device with %d tracer(s)", dev.numThreads)

	return dev, rest, nil
}

// Get the device tracers.
func (d *Device) Tracers() []tracer.Tracer {
	return d.tracers
}

// Returns true if the device runs in debug mode.
func (d *Device) Debug() bool {
	return d.debug
}

// Shutdown all tracers. Objects created by this device can no longer be rendered.
func (d *Device) Close() {
	for _, tr := range d.tracers {
		tr.Close()
	}
	d.tracers = nil
}
