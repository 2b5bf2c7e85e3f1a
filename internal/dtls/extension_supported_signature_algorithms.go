package dtls

import "encoding/binary"

// HashAlgorithm identifies the hash half of a TLS 1.2 SignatureAndHashAlgorithm
// pair [RFC5246 §7.4.1.4.1].
type HashAlgorithm byte

const (
	HashAlgorithmMD5    HashAlgorithm = 1
	HashAlgorithmSHA1   HashAlgorithm = 2
	HashAlgorithmSHA224 HashAlgorithm = 3
	HashAlgorithmSHA256 HashAlgorithm = 4
	HashAlgorithmSHA384 HashAlgorithm = 5
	HashAlgorithmSHA512 HashAlgorithm = 6
)

type signatureAlgorithm byte

const (
	signatureAlgorithmRSA   signatureAlgorithm = 1
	signatureAlgorithmECDSA signatureAlgorithm = 3
)

type signatureHashAlgorithm struct {
	hash      HashAlgorithm
	signature signatureAlgorithm
}

// defaultSignatureHashAlgorithms is offered in ClientHello's
// signature_algorithms extension, preferring stronger hashes first.
var defaultSignatureHashAlgorithms = []signatureHashAlgorithm{
	{HashAlgorithmSHA256, signatureAlgorithmRSA},
	{HashAlgorithmSHA256, signatureAlgorithmECDSA},
	{HashAlgorithmSHA384, signatureAlgorithmRSA},
	{HashAlgorithmSHA384, signatureAlgorithmECDSA},
	{HashAlgorithmSHA512, signatureAlgorithmRSA},
	{HashAlgorithmSHA512, signatureAlgorithmECDSA},
	{HashAlgorithmSHA1, signatureAlgorithmRSA},
	{HashAlgorithmSHA1, signatureAlgorithmECDSA},
}

type extensionSupportedSignatureAlgorithms struct {
	signatureHashAlgorithms []signatureHashAlgorithm
}

func (e *extensionSupportedSignatureAlgorithms) Type() ExtensionType {
	return ExtensionTypeSupportedSignatureAlgorithms
}

func (e *extensionSupportedSignatureAlgorithms) Marshal() ([]byte, error) {
	body := make([]byte, 2+2*len(e.signatureHashAlgorithms))
	binary.BigEndian.PutUint16(body[0:2], uint16(2*len(e.signatureHashAlgorithms)))
	for i, a := range e.signatureHashAlgorithms {
		body[2+2*i] = byte(a.hash)
		body[2+2*i+1] = byte(a.signature)
	}
	return append(extensionHeader(e.Type(), len(body)), body...), nil
}

func (e *extensionSupportedSignatureAlgorithms) Unmarshal(data []byte) error {
	_, bodyLen, err := unmarshalExtensionHeader(data)
	if err != nil {
		return err
	}
	body := data[4 : 4+bodyLen]
	if len(body) < 2 {
		return errExtensionTooShort
	}
	listLen := int(binary.BigEndian.Uint16(body[0:2]))
	body = body[2:]
	if len(body) < listLen {
		return errExtensionTooShort
	}
	e.signatureHashAlgorithms = nil
	for i := 0; i+1 < listLen; i += 2 {
		e.signatureHashAlgorithms = append(e.signatureHashAlgorithms, signatureHashAlgorithm{
			hash:      HashAlgorithm(body[i]),
			signature: signatureAlgorithm(body[i+1]),
		})
	}
	return nil
}
