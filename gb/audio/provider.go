package audio

// Provider is the host-facing surface for audio consumption and debug
// control, independent of the APU's internal channel representation.
type Provider interface {
	GetSamples(count int) []int16

	ToggleChannel(channel int)
	SoloChannel(channel int)
	GetChannelStatus() (ch1, ch2, ch3, ch4 bool)
}

var _ Provider = (*APU)(nil)
