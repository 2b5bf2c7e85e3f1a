package interceptor

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

type recordingInterceptor struct {
	NoOp
	tag   string
	order *[]string
}

func (r *recordingInterceptor) BindLocalStream(info *StreamInfo, writer RTPWriter) RTPWriter {
	return RTPWriterFunc(func(pkt *Packet, attrs Attributes) (int, error) {
		*r.order = append(*r.order, r.tag)
		return writer.Write(pkt, attrs)
	})
}

func (r *recordingInterceptor) BindRemoteStream(info *StreamInfo, reader RTPReader) RTPReader {
	// A reader sees the packet once the inner read has returned it.
	return RTPReaderFunc(func(pkt *Packet, attrs Attributes) (int, error) {
		n, err := reader.Read(pkt, attrs)
		*r.order = append(*r.order, r.tag)
		return n, err
	})
}

func TestChainBindLocalStreamOrder(t *testing.T) {
	var order []string
	a := &recordingInterceptor{tag: "a", order: &order}
	b := &recordingInterceptor{tag: "b", order: &order}

	chain := NewChain([]Interceptor{a, b})

	var wireOrder []string
	raw := RTPWriterFunc(func(pkt *Packet, attrs Attributes) (int, error) {
		wireOrder = append(wireOrder, "wire")
		return 0, nil
	})

	writer := chain.BindLocalStream(&StreamInfo{SSRC: 1}, raw)
	_, err := writer.Write(&Packet{}, nil)
	assert.NoError(t, err)

	// a wraps b wraps raw, so a observes the packet first on the way out.
	assert.Equal(t, []string{"a", "b"}, order)
	assert.Equal(t, []string{"wire"}, wireOrder)
}

func TestChainBindRemoteStreamOrder(t *testing.T) {
	var order []string
	a := &recordingInterceptor{tag: "a", order: &order}
	b := &recordingInterceptor{tag: "b", order: &order}

	chain := NewChain([]Interceptor{a, b})

	raw := RTPReaderFunc(func(pkt *Packet, attrs Attributes) (int, error) {
		return 0, nil
	})

	reader := chain.BindRemoteStream(&StreamInfo{SSRC: 1}, raw)
	_, err := reader.Read(&Packet{}, nil)
	assert.NoError(t, err)

	assert.Equal(t, []string{"a", "b"}, order)
}

func TestChainClosePropagatesAllInterceptors(t *testing.T) {
	a := &recordingInterceptor{tag: "a", order: &[]string{}}
	b := &recordingInterceptor{tag: "b", order: &[]string{}}
	chain := NewChain([]Interceptor{a, b})
	assert.NoError(t, chain.Close())
}

func TestHeaderSetAndGetExtension(t *testing.T) {
	var h Header

	_, ok := h.Extension(5)
	assert.False(t, ok)

	h.SetExtension(5, []byte{1, 2})
	payload, ok := h.Extension(5)
	assert.True(t, ok)
	assert.Equal(t, []byte{1, 2}, payload)

	h.SetExtension(5, []byte{3})
	payload, ok = h.Extension(5)
	assert.True(t, ok)
	assert.Equal(t, []byte{3}, payload)
}

func TestStreamInfoHeaderExtensionID(t *testing.T) {
	info := StreamInfo{
		RTPHeaderExtensions: []RTPHeaderExtension{
			{URI: "urn:ietf:params:rtp-hdrext:sdes:mid", ID: 4},
		},
	}
	assert.Equal(t, uint8(4), info.HeaderExtensionID("urn:ietf:params:rtp-hdrext:sdes:mid"))
	assert.Equal(t, uint8(0), info.HeaderExtensionID("unknown"))
}
