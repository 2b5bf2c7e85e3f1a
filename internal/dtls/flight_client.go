package dtls

import (
	"crypto/x509"
	"time"

	errors "golang.org/x/xerrors"
)

// buildClientHello sends flight 1 (or flight 3, once a cookie is known)
// [RFC6347 §4.2.1]. The client random and session ID stay fixed across both
// sends so the server's cookie verification succeeds.
func (e *handshakeEngine) buildClientHello(cookie []byte) ([][]byte, error) {
	if e.clientRandom.GMTUnixTime.IsZero() {
		r, err := newHandshakeRandom()
		if err != nil {
			return nil, err
		}
		e.clientRandom = r
	}

	ids := make([]CipherSuiteID, 0, len(defaultCipherSuites()))
	for _, cs := range defaultCipherSuites() {
		ids = append(ids, cs.ID())
	}

	hello := &ClientHello{
		Version:            protocolVersion1_2,
		Random:             e.clientRandom,
		SessionID:          e.sessionID,
		Cookie:             cookie,
		CipherSuites:       ids,
		CompressionMethods: []byte{compressionMethodNull},
		Extensions: []extension{
			&extensionSupportedEllipticCurves{curves: defaultNamedCurves},
			&extensionSupportedPointFormats{pointFormats: []EllipticCurvePointFormat{EllipticCurvePointFormatUncompressed}},
			&extensionSupportedSignatureAlgorithms{signatureHashAlgorithms: defaultSignatureHashAlgorithms},
			&extensionUseSRTP{protectionProfiles: defaultSRTPProtectionProfiles},
			&extensionExtendedMasterSecret{},
			&extensionRenegotiationInfo{},
		},
	}

	if len(cookie) == 0 {
		return e.sendHandshakeMessageNoCache(hello)
	}
	return e.sendHandshakeMessage(hello)
}

// continueServerFlight processes the server's ServerHello..ServerHelloDone
// flight once it has fully arrived, and builds the client's answering
// flight: [Certificate], ClientKeyExchange, [CertificateVerify],
// ChangeCipherSpec, Finished.
func (e *handshakeEngine) continueServerFlight(fl *flight) ([][]byte, time.Duration, bool, error) {
	shMsg, ok := fl.messages[HandshakeTypeServerHello]
	if !ok {
		return nil, 0, false, errUnexpectedMessage
	}
	sh := shMsg.Message.(*ServerHello)
	e.serverRandom = sh.Random

	cs, err := cipherSuiteByID(sh.CipherSuite)
	if err != nil {
		return nil, 0, false, err
	}
	e.cipherSuite = cs

	if sh.extension(ExtensionTypeExtendedMasterSecret) != nil {
		e.useEMS = true
	}
	if useSRTP, ok := sh.extension(ExtensionTypeUseSRTP).(*extensionUseSRTP); ok && len(useSRTP.protectionProfiles) > 0 {
		e.srtpProfile = useSRTP.protectionProfiles[0]
	}

	certMsg, ok := fl.messages[HandshakeTypeCertificate]
	if !ok {
		return nil, 0, false, errInvalidCertificate
	}
	chain := certMsg.Message.(*Certificate).Certificate
	if len(chain) == 0 {
		return nil, 0, false, errInvalidCertificate
	}
	remoteCert, err := x509.ParseCertificate(chain[0])
	if err != nil {
		return nil, 0, false, errors.Errorf("dtls: parse server certificate: %v", err)
	}
	e.remoteCert = remoteCert

	skeMsg, ok := fl.messages[HandshakeTypeServerKeyExchange]
	if !ok {
		return nil, 0, false, errUnexpectedMessage
	}
	ske := skeMsg.Message.(*ServerKeyExchange)
	signed := signedParams(e.clientRandom, e.serverRandom, ske.Curve, ske.PublicKey)
	if err := verifyParams(remoteCert.PublicKey, signed, ske.Signature); err != nil {
		return nil, 0, false, err
	}
	e.curve = ske.Curve
	e.peerKey = ske.PublicKey

	kp, err := generateECDHKeyPair(e.curve)
	if err != nil {
		return nil, 0, false, err
	}
	e.ecdh = kp

	premasterSecret, err := e.ecdh.sharedSecret(e.peerKey)
	if err != nil {
		return nil, 0, false, err
	}

	var out [][]byte
	_, certRequested := fl.messages[HandshakeTypeCertificateRequest]
	if certRequested && e.localCert != nil {
		certRecs, err := e.sendHandshakeMessage(&Certificate{Certificate: [][]byte{e.localCert.Raw}})
		if err != nil {
			return nil, 0, false, err
		}
		out = append(out, certRecs...)
	}

	ckeRecs, err := e.sendHandshakeMessage(&ClientKeyExchange{PublicKey: e.ecdh.pub})
	if err != nil {
		return nil, 0, false, err
	}
	out = append(out, ckeRecs...)

	e.masterSecret = e.deriveMasterSecret(premasterSecret)

	if certRequested && e.localCert != nil {
		transcriptHash := e.cache.sessionHash(cipherSuiteHashSHA256(), transcriptRules(false)...)
		sig, err := signParams(e.localKey, transcriptHash)
		if err != nil {
			return nil, 0, false, err
		}
		cvRecs, err := e.sendHandshakeMessage(&CertificateVerify{
			SignatureHash: signatureHashAlgorithm{HashAlgorithmSHA256, signatureAlgorithmECDSA},
			Signature:     sig,
		})
		if err != nil {
			return nil, 0, false, err
		}
		out = append(out, cvRecs...)
	}

	if err := e.cipherSuite.init(e.masterSecret, marshalRandom(e.clientRandom), marshalRandom(e.serverRandom), true); err != nil {
		return nil, 0, false, err
	}

	ccsRec, err := e.sendChangeCipherSpec()
	if err != nil {
		return nil, 0, false, err
	}
	out = append(out, ccsRec)

	finRecs, err := e.sendHandshakeMessage(&Finished{VerifyData: e.verifyData("client finished", false)})
	if err != nil {
		return nil, 0, false, err
	}
	out = append(out, finRecs...)

	e.state = stateWaitServerFinished
	return out, initialRetransmitTimeout, false, nil
}

// verifyServerFinished checks the server's Finished against the expected
// verify_data, completing the handshake.
func (e *handshakeEngine) verifyServerFinished(fl *flight) error {
	finMsg, ok := fl.messages[HandshakeTypeFinished]
	if !ok {
		return errUnexpectedMessage
	}
	expected := e.verifyData("server finished", true)
	got := finMsg.Message.(*Finished).VerifyData
	if len(got) != len(expected) || !constantTimeEqual(got, expected) {
		return errVerifyDataMismatch
	}
	return nil
}
