package field

import "gonum.org/v1/gonum/floats"

// Stats summarizes one channel.
type Stats struct {
	Min, Mean, Max float64
}

// ChannelStats returns min, mean and max of channel ch.
func (f *Field) ChannelStats(ch Channel) (Stats, error) {
	data, err := f.Channel(ch)
	if err != nil {
		return Stats{}, err
	}
	if len(data) == 0 {
		return Stats{}, ErrEmptyGrid
	}
	return Stats{
		Min:  floats.Min(data),
		Mean: floats.Sum(data) / float64(len(data)),
		Max:  floats.Max(data),
	}, nil
}
