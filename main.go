// main.go - command-line entry point: flag parsing, device-slot wiring, and
// the host frame loop.

package main

import (
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

func main() {
	fullscreen := flag.Bool("fullscreen", false, "start in fullscreen")
	mem := flag.Int("mem", 4, "RAM size in megabytes (display window excluded)")
	rtc := flag.Bool("rtc", false, "advertise a real-time clock to the guest")
	size := flag.String("size", "1024x768", "comma-separated WxH[xD] display modes")
	dynsize := flag.Bool("dynsize", false, "enable dynamic mode switching")
	hostfs := flag.String("hostfs", "", "directory to expose over the HostFS bridge")
	hosttransfer := flag.String("hosttransfer", "", "directory to expose over the host-transfer bridge")
	leds := flag.Bool("leds", false, "print LED register changes to stdout")
	bootFromSerial := flag.Bool("boot-from-serial", false, "feed the serial line from an interactive raw terminal")
	serialIn := flag.String("serial-in", "", "file to read as serial input")
	serialOut := flag.String("serial-out", "", "file to append serial output to")
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: orisc [options] disk-image\n\nRuns the Oberon RISC emulator.\n\nOptions:\n")
		flag.PrintDefaults()
	}
	flag.Parse()

	modes, err := parseModes(*size)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	m := NewMachine()
	m.rtcEnabled = *rtc
	m.Clipboard = NewHostClipboard()
	if *leds {
		m.LED = &ConsoleLED{}
	}

	if err := m.ConfigureMemory(*mem, modes, *dynsize); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	if flag.NArg() >= 1 {
		disk, err := NewSPIDisk(flag.Arg(0))
		if err != nil {
			fmt.Fprintf(os.Stderr, "error: opening disk image: %v\n", err)
			os.Exit(1)
		}
		defer disk.Close()
		m.SPI[1] = disk
	}

	if *hostfs != "" {
		bridge, err := NewHostFSBridge(*hostfs)
		if err != nil {
			fmt.Fprintf(os.Stderr, "error: hostfs: %v\n", err)
			os.Exit(1)
		}
		m.HostFS = bridge
	}
	if *hosttransfer != "" {
		bridge, err := NewHostFSBridge(*hosttransfer)
		if err != nil {
			fmt.Fprintf(os.Stderr, "error: hosttransfer: %v\n", err)
			os.Exit(1)
		}
		m.HostTransfer = bridge
	}

	var termHost *TerminalHost
	switch {
	case *bootFromSerial:
		serial := NewTerminalSerial()
		m.Serial = serial
		termHost = NewTerminalHost(serial)
		termHost.Start()
		defer termHost.Stop()
	case *serialIn != "" || *serialOut != "":
		serial, err := NewFileSerial(*serialIn, *serialOut)
		if err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			os.Exit(1)
		}
		defer serial.Close()
		m.Serial = serial
	}

	display := NewDisplay(m, *fullscreen, 1)
	if err := display.Start(); err != nil {
		fmt.Fprintf(os.Stderr, "error: starting display: %v\n", err)
		os.Exit(1)
	}

	for display.IsStarted() {
		if termHost != nil {
			termHost.PrintOutput()
			if termHost.QuitRequested() {
				break
			}
		}
		time.Sleep(15 * time.Millisecond)
	}
}

// parseModes parses a comma-separated "WxH[xD]" list into a modes table,
// index-assigned in order. Depth defaults to 1 (monochrome) when omitted.
func parseModes(spec string) ([]DisplayMode, error) {
	var modes []DisplayMode
	for i, part := range strings.Split(spec, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		dims := strings.Split(part, "x")
		if len(dims) != 2 && len(dims) != 3 {
			return nil, fmt.Errorf("invalid mode %q: want WxH[xD]", part)
		}
		w, err1 := strconv.Atoi(dims[0])
		h, err2 := strconv.Atoi(dims[1])
		if err1 != nil || err2 != nil {
			return nil, fmt.Errorf("invalid mode %q: non-numeric field", part)
		}
		d := 1
		if len(dims) == 3 {
			var err error
			d, err = strconv.Atoi(dims[2])
			if err != nil {
				return nil, fmt.Errorf("invalid mode %q: non-numeric depth", part)
			}
		}
		if d != 1 && d != 4 && d != 8 {
			return nil, fmt.Errorf("invalid mode %q: depth must be 1, 4 or 8", part)
		}
		modes = append(modes, DisplayMode{Index: i, Width: w, Height: h, Depth: d})
	}
	return modes, nil
}
