package dtls

import (
	"crypto/rand"
	"encoding/binary"
	"time"

	errors "golang.org/x/xerrors"
)

// randomLength is the fixed size of a Random: 4-byte gmt_unix_time followed
// by 28 random bytes [RFC5246 §7.4.1.2].
const randomLength = 32

type handshakeRandom struct {
	GMTUnixTime time.Time
	RandomBytes [28]byte
}

func newHandshakeRandom() (handshakeRandom, error) {
	r := handshakeRandom{GMTUnixTime: time.Now()}
	if _, err := rand.Read(r.RandomBytes[:]); err != nil {
		return r, err
	}
	return r, nil
}

func (r *handshakeRandom) Marshal() ([]byte, error) {
	buf := make([]byte, randomLength)
	binary.BigEndian.PutUint32(buf[0:4], uint32(r.GMTUnixTime.Unix()))
	copy(buf[4:], r.RandomBytes[:])
	return buf, nil
}

func (r *handshakeRandom) Unmarshal(data []byte) error {
	if len(data) < randomLength {
		return errors.New("dtls: random too short")
	}
	r.GMTUnixTime = time.Unix(int64(binary.BigEndian.Uint32(data[0:4])), 0)
	copy(r.RandomBytes[:], data[4:randomLength])
	return nil
}
