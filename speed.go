package serial

import (
	"log/slog"

	"golang.org/x/sys/unix"
)

// ApplySpeed sets a device's baud rate from a speed token such as "9600",
// "1M" or "12.5M". Rates with a fixed termios code are written through the
// rate bits in Cflag; the remaining rates are programmed as explicit input
// and output speeds through termios2. The device is always written, which
// also discards any unread input.
func ApplySpeed(device, token string, opts ...Option) error {
	config, err := newConfig(opts)
	if err != nil {
		return err
	}
	return applySpeed(openAttributeDevice, device, token, config)
}

func applySpeed(open openDeviceFunc, device, token string, config Config) error {
	if device == "" || token == "" {
		return deviceError("speed", device, ErrInvalidArgument, nil)
	}
	spec, ok := LookupSpeed(token)
	if !ok {
		return deviceError("speed "+token, device, ErrInvalidArgument, nil)
	}
	log := config.logger().With("device", device, "speed", spec.Token, "baud", spec.Value)

	dev, err := open(device)
	if err != nil {
		return deviceError("speed", device, ErrDeviceOpen, err)
	}
	defer dev.Close()

	if spec.Extended() {
		return setExtendedSpeed(dev, device, spec, log)
	}

	state, err := dev.State()
	if err != nil {
		return deviceError("speed", device, ErrAttributeGet, err)
	}
	state.Cflag = (state.Cflag &^ unix.CBAUD) | spec.Code
	if err := dev.SetStateFlush(state); err != nil {
		return deviceError("speed", device, ErrAttributeSet, err)
	}
	log.Debug("set baud rate")
	return nil
}

func setExtendedSpeed(dev termiosDevice, device string, spec SpeedSpec, log *slog.Logger) error {
	state, err := dev.ExtendedState()
	if err != nil {
		return deviceError("speed", device, ErrAttributeGet, err)
	}
	log.Debug("current extended speed",
		"cbaud", state.Cflag&unix.CBAUD, "ispeed", state.Ispeed, "ospeed", state.Ospeed)

	state.Cflag = (state.Cflag &^ unix.CBAUD) | unix.BOTHER
	state.Ispeed = spec.Value
	state.Ospeed = spec.Value
	if err := dev.SetExtendedStateFlush(state); err != nil {
		return deviceError("speed", device, ErrAttributeSet, err)
	}
	log.Debug("set extended baud rate")
	return nil
}
