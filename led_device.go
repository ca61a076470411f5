// led_device.go - console-printed LED device for --leds: reports bit
// transitions instead of driving real GPIO.

package main

import "fmt"

// ConsoleLED prints the 8-bit LED register each time it changes.
type ConsoleLED struct {
	last uint32
	seen bool
}

func (l *ConsoleLED) Write(v uint32) {
	v &= 0xFF
	if l.seen && v == l.last {
		return
	}
	l.last, l.seen = v, true
	fmt.Printf("leds: %08b\n", v)
}
