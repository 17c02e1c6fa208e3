//go:build linux

// command motioncored runs the command-interpreter core's cooperative
// scheduling loop against whatever collaborators the host build can
// supply (spec.md §2, §9).
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"sync"

	"github.com/tarm/serial"

	"motioncore.dev/clock"
	"motioncore.dev/core"
	"motioncore.dev/driver/tmc2209"
	"motioncore.dev/heater"
	"motioncore.dev/hw/buttons"
	"motioncore.dev/hw/fan"
	"motioncore.dev/hw/led"
	"motioncore.dev/hw/piezo"
	"motioncore.dev/hw/stepper"
	"motioncore.dev/hw/storage"
	"motioncore.dev/hw/valve"
	"motioncore.dev/point"
	"motioncore.dev/settings"
	"motioncore.dev/source"
	"motioncore.dev/source/hostlink"
)

var (
	device        = flag.String("device", "", "host link serial device (default: platform-specific)")
	storagePath   = flag.String("storage", "motioncore.settings", "settings storage file path")
	stepperDevice = flag.String("stepper-device", "", "TMC2209 shared UART device (empty: run without per-axis current control)")
)

// stepperSense is the sense-resistor value TMC2209 modules on this
// board ship with, in milliohms.
const stepperSense = 110

// stepperAddrs assigns a UART node address per axis driver, matching
// how multiple TMC2209s share one UART bus (driver/tmc2209's
// SetupSharedUART).
var stepperAddrs = [point.NumAxes]uint8{point.X: 0, point.Y: 1, point.Z: 2, point.A: 3, point.B: 4}

func main() {
	flag.Parse()
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "motioncored: %v\n", err)
		os.Exit(2)
	}
}

func run() error {
	log.SetFlags(log.Flags() &^ (log.Ldate | log.Ltime))
	log.Println("motioncored: starting")

	st, err := storage.Open(*storagePath)
	if err != nil {
		return err
	}
	defer st.Close()
	store := settings.New(st, nil)
	if err := store.Load(); err != nil {
		log.Printf("motioncored: settings: %v (factory reset)", err)
		if err := store.FactoryReset(); err != nil {
			return err
		}
	}

	motionPlanner, err := newPlanner()
	if err != nil {
		return err
	}

	fanOut, err := fan.Open("GPIO17")
	if err != nil {
		return err
	}
	valveOut, err := valve.Open("GPIO27")
	if err != nil {
		return err
	}
	ledOut, err := led.Open("GPIO22", "GPIO23", "GPIO24")
	if err != nil {
		return err
	}
	piezoOut, err := piezo.Open("GPIO25")
	if err != nil {
		return err
	}
	btns, err := buttons.Open()
	if err != nil {
		return err
	}

	// The host link pushes from its own goroutine (below), so the
	// command buffer needs a real critical section.
	var bufMu sync.Mutex
	var c *core.Core
	c = core.New(core.Deps{
		Planner:   motionPlanner,
		Extruders: [2]heater.Heater{&stubHeater{}, &stubHeater{}},
		Platform:  &stubHeater{},
		Interface: stubInterface{},
		Piezo:     piezoOut,
		LED:       ledOut,
		Fan:       fanOut,
		Valve:     valveOut,
		Card:      stubCard{},
		Utility:   stubUtility{},
		Host:      stubHost{},
		Settings:  store,
		Clock:     clock.NewSystem(),
		ButtonPressed: func() (bool, bool) {
			return btns.Pressed(c.ArmedButtonMask())
		},
		Active: source.HostLink,
	}, func(fn func()) {
		bufMu.Lock()
		defer bufMu.Unlock()
		fn()
	})

	link, err := hostlink.Open(*device, c.Buffer())
	if err != nil {
		return err
	}
	go func() {
		if err := link.Run(); err != nil {
			log.Printf("motioncored: host link: %v", err)
		}
	}()

	for {
		c.RunSlice()
	}
}

// newPlanner builds the Planner collaborator: a stubPlanner (motion
// interpolation is out of scope here, see stub.go) wrapped with real
// TMC2209 current control when -stepper-device is set, so ENABLE_AXES
// and SET_POT_VALUE drive actual hardware instead of a no-op.
func newPlanner() (*stepper.Planner, error) {
	inner := &stubPlanner{}
	if *stepperDevice == "" {
		return &stepper.Planner{Planner: inner}, nil
	}
	bus, err := serial.OpenPort(&serial.Config{Name: *stepperDevice, Baud: 115200})
	if err != nil {
		return nil, fmt.Errorf("stepper bus: %w", err)
	}
	var drivers [point.NumAxes]*tmc2209.Device
	for axis, addr := range stepperAddrs {
		drivers[axis] = &tmc2209.Device{Bus: bus, Addr: addr, Sense: stepperSense}
	}
	return &stepper.Planner{Planner: inner, Drivers: drivers}, nil
}
