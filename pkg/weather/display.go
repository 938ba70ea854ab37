package weather

import (
	"context"
	"fmt"
	"io"
	"os"
)

// Display prints every received measurement as a single console line.
type Display struct {
	// Out is where the lines are written, os.Stdout by default.
	Out io.Writer
}

func (d *Display) Update(ctx context.Context, m Measurements) error {
	_, err := fmt.Fprintln(d.out(), FormatDisplay(m))
	return err
}

func (d *Display) out() io.Writer {
	if d.Out == nil {
		return os.Stdout
	}
	return d.Out
}

// FormatDisplay formats the measurements the way a Display prints them.
func FormatDisplay(m Measurements) string {
	return fmt.Sprintf("Display: Temperature = %v°C, Humidity = %v%%, Pressure = %v hPa",
		m.Temperature, m.Humidity, m.Pressure)
}
