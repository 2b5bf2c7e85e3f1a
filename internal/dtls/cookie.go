package dtls

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"net"
)

// cookieSecretLength is the size of the server's per-listener HMAC secret.
const cookieSecretLength = 32

// cookieGenerator produces and verifies the stateless cookie a DTLS server
// sends in HelloVerifyRequest, so no per-client state is allocated until a
// source address is confirmed capable of receiving traffic
// [RFC6347 §4.2.1].
type cookieGenerator struct {
	secret [cookieSecretLength]byte
}

func newCookieGenerator() (*cookieGenerator, error) {
	g := &cookieGenerator{}
	if _, err := rand.Read(g.secret[:]); err != nil {
		return nil, err
	}
	return g, nil
}

// generate derives a cookie from the client's address and the ClientHello
// fields that must remain stable across the retried ClientHello (random,
// session ID). Stateless: the server does not need to remember this value,
// only recompute and compare it.
func (g *cookieGenerator) generate(raddr net.Addr, clientRandom []byte, sessionID []byte) []byte {
	mac := hmac.New(sha256.New, g.secret[:])
	mac.Write([]byte(raddr.String()))
	mac.Write(clientRandom)
	mac.Write(sessionID)
	return mac.Sum(nil)
}

func (g *cookieGenerator) verify(cookie []byte, raddr net.Addr, clientRandom []byte, sessionID []byte) bool {
	expected := g.generate(raddr, clientRandom, sessionID)
	return hmac.Equal(cookie, expected)
}
