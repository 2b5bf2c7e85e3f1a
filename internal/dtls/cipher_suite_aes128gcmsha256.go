package dtls

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/binary"
	"hash"

	errors "golang.org/x/xerrors"
)

const (
	gcmKeyLength   = 16 // AES-128
	gcmFixedIVLen  = 4  // implicit part of the nonce, from the key block
	gcmExplicitLen = 8  // explicit part of the nonce, sent per record
	gcmTagLength   = 16
)

// cipherSuiteAES128GCMSHA256 implements AEAD_AES_128_GCM record protection
// with SHA-256 as the PRF hash [RFC5288].
type cipherSuiteAES128GCMSHA256 struct {
	id    CipherSuiteID
	ct    certificateType
	local cipher.AEAD
	remote cipher.AEAD
	localIV, remoteIV []byte
	localWriteSeq     uint64
}

func newCipherSuiteAES128GCMSHA256(id CipherSuiteID, ct certificateType) cipherSuite {
	return &cipherSuiteAES128GCMSHA256{id: id, ct: ct}
}

func (c *cipherSuiteAES128GCMSHA256) ID() CipherSuiteID          { return c.id }
func (c *cipherSuiteAES128GCMSHA256) certificateType() certificateType { return c.ct }
func (c *cipherSuiteAES128GCMSHA256) hashFunc() func() hash.Hash { return cipherSuiteHashSHA256() }

// init expands the master secret into a key block and builds the local and
// remote AEAD instances. No MAC keys are derived; AEAD suites carry no
// separate MAC [RFC5246 §6.2.3.3].
func (c *cipherSuiteAES128GCMSHA256) init(masterSecret, clientRandom, serverRandom []byte, isClient bool) error {
	keyBlockLen := 2*gcmKeyLength + 2*gcmFixedIVLen
	keyBlock := prfKeyExpansion(masterSecret, clientRandom, serverRandom, keyBlockLen)

	offset := 0
	clientWriteKey := keyBlock[offset : offset+gcmKeyLength]
	offset += gcmKeyLength
	serverWriteKey := keyBlock[offset : offset+gcmKeyLength]
	offset += gcmKeyLength
	clientWriteIV := keyBlock[offset : offset+gcmFixedIVLen]
	offset += gcmFixedIVLen
	serverWriteIV := keyBlock[offset : offset+gcmFixedIVLen]

	localKey, remoteKey := serverWriteKey, clientWriteKey
	localIV, remoteIV := serverWriteIV, clientWriteIV
	if isClient {
		localKey, remoteKey = clientWriteKey, serverWriteKey
		localIV, remoteIV = clientWriteIV, serverWriteIV
	}

	var err error
	c.local, err = newAEAD(localKey)
	if err != nil {
		return err
	}
	c.remote, err = newAEAD(remoteKey)
	if err != nil {
		return err
	}
	c.localIV = append([]byte(nil), localIV...)
	c.remoteIV = append([]byte(nil), remoteIV...)
	return nil
}

func newAEAD(key []byte) (cipher.AEAD, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, errors.Errorf("dtls: aes key: %v", err)
	}
	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, errors.Errorf("dtls: gcm: %v", err)
	}
	return aead, nil
}

// aad is seq_num || type || version || length(plaintext), the additional
// data authenticated but not encrypted [RFC5246 §6.2.3.3].
func gcmAdditionalData(seqNum uint64, contentType ContentType, plaintextLen int) []byte {
	aad := make([]byte, 13)
	binary.BigEndian.PutUint64(aad[0:8], seqNum)
	aad[8] = byte(contentType)
	aad[9] = protocolVersion1_2.Major
	aad[10] = protocolVersion1_2.Minor
	binary.BigEndian.PutUint16(aad[11:13], uint16(plaintextLen))
	return aad
}

func (c *cipherSuiteAES128GCMSHA256) encrypt(epoch uint16, seq uint64, contentType ContentType, plaintext []byte) ([]byte, error) {
	if c.local == nil {
		return nil, errors.New("dtls: cipher suite not initialized")
	}
	explicitNonce := make([]byte, gcmExplicitLen)
	if _, err := rand.Read(explicitNonce); err != nil {
		return nil, errors.Errorf("dtls: nonce: %v", err)
	}
	nonce := append(append([]byte(nil), c.localIV...), explicitNonce...)

	seqNum := uint64(epoch)<<48 | seq
	aad := gcmAdditionalData(seqNum, contentType, len(plaintext))

	sealed := c.local.Seal(nil, nonce, plaintext, aad)
	out := make([]byte, 0, gcmExplicitLen+len(sealed))
	out = append(out, explicitNonce...)
	out = append(out, sealed...)
	return out, nil
}

func (c *cipherSuiteAES128GCMSHA256) decrypt(epoch uint16, seq uint64, contentType ContentType, record []byte) ([]byte, error) {
	if c.remote == nil {
		return nil, errors.New("dtls: cipher suite not initialized")
	}
	if len(record) < gcmExplicitLen+gcmTagLength {
		return nil, errors.New("dtls: ciphertext too short")
	}
	explicitNonce := record[:gcmExplicitLen]
	ciphertext := record[gcmExplicitLen:]
	nonce := append(append([]byte(nil), c.remoteIV...), explicitNonce...)

	seqNum := uint64(epoch)<<48 | seq
	aad := gcmAdditionalData(seqNum, contentType, len(ciphertext)-gcmTagLength)

	plaintext, err := c.remote.Open(nil, nonce, ciphertext, aad)
	if err != nil {
		return nil, errors.Errorf("dtls: record integrity check failed: %v", err)
	}
	return plaintext, nil
}
