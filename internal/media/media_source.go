package media

/*
A MediaSource is a stream of media data that can have multiple consumers. The media
data is chunked into packets (which may represent discrete video frames, or
spans of multiple audio frames). Consumer functions subscribe to get a channel,
on which the MediaSource sends packets. Each packet is delivered as a []byte.

The MediaSource interface represents only the consumer-facing side of a media stream;
it makes no assumptions about how the data is produced. Nor does it describe the
nature of the data packets being delivered. It merely provides an interface for
common behavior between AudioSource and VideoSource, which extend MediaSource.

Example usage:

	var src MediaSource = ...
	ch := src.Subscribe(4)
	defer src.Unsubscribe(ch)
	for buf := range ch {
		// Do something with buf
	}

*/
type MediaSource interface {
	// Subscribe creates a new channel with the given capacity, and starts
	// passing incoming data buffers to it.
	//
	// Callers must ensure that the channel is unsubscribed when processing is
	// complete (e.g. a defer statement immediately following Subscribe()).
	Subscribe(capacity int) <-chan []byte

	// Unsubscribe tells the source to stop passing data buffers to r.
	Unsubscribe(r <-chan []byte) error
}
