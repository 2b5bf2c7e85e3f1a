package dtls

import (
	"crypto/x509"
	"time"

	errors "golang.org/x/xerrors"
)

// buildHelloVerifyRequest answers a cookie-less ClientHello, so no
// per-client state is allocated until the client proves it can receive
// traffic at its claimed source address [RFC6347 §4.2.1].
func (e *handshakeEngine) buildHelloVerifyRequest() ([][]byte, error) {
	e.cookie = e.cookieGen.generate(e.conn.RemoteAddr(), marshalRandom(e.clientRandom), e.sessionID)
	return e.sendHandshakeMessageNoCache(&HelloVerifyRequest{Version: protocolVersion1_2, Cookie: e.cookie})
}

// sendServerFlight answers a cookie-verified ClientHello with ServerHello,
// Certificate, ServerKeyExchange, CertificateRequest, ServerHelloDone
// [RFC5246 §7.3].
func (e *handshakeEngine) sendServerFlight(hello *ClientHello) ([][]byte, time.Duration, bool, error) {
	cs, err := chooseCipherSuite(hello.CipherSuites)
	if err != nil {
		return nil, 0, false, err
	}
	e.cipherSuite = cs

	r, err := newHandshakeRandom()
	if err != nil {
		return nil, 0, false, err
	}
	e.serverRandom = r

	useEMS := hello.extension(ExtensionTypeExtendedMasterSecret) != nil
	e.useEMS = useEMS

	var srtpExt *extensionUseSRTP
	if theirs, ok := hello.extension(ExtensionTypeUseSRTP).(*extensionUseSRTP); ok {
		profile, ok := chooseSRTPProtectionProfile(defaultSRTPProtectionProfiles, theirs.protectionProfiles)
		if !ok {
			return nil, 0, false, errors.New("dtls: no common use_srtp profile")
		}
		e.srtpProfile = profile
		srtpExt = &extensionUseSRTP{protectionProfiles: []SRTPProtectionProfile{profile}}
	}

	curves := defaultNamedCurves
	if ext, ok := hello.extension(ExtensionTypeSupportedEllipticCurves).(*extensionSupportedEllipticCurves); ok {
		curves = ext.curves
	}
	curve, ok := chooseCurve(defaultNamedCurves, curves)
	if !ok {
		return nil, 0, false, errNoCommonCurve
	}
	e.curve = curve

	kp, err := generateECDHKeyPair(curve)
	if err != nil {
		return nil, 0, false, err
	}
	e.ecdh = kp

	exts := []extension{
		&extensionSupportedPointFormats{pointFormats: []EllipticCurvePointFormat{EllipticCurvePointFormatUncompressed}},
	}
	if srtpExt != nil {
		exts = append(exts, srtpExt)
	}
	if useEMS {
		exts = append(exts, &extensionExtendedMasterSecret{})
	}
	exts = append(exts, &extensionRenegotiationInfo{})

	serverHello := &ServerHello{
		Version:           protocolVersion1_2,
		Random:            e.serverRandom,
		SessionID:         e.sessionID,
		CipherSuite:       cs.ID(),
		CompressionMethod: compressionMethodNull,
		Extensions:        exts,
	}

	var out [][]byte
	shRecs, err := e.sendHandshakeMessage(serverHello)
	if err != nil {
		return nil, 0, false, err
	}
	out = append(out, shRecs...)

	certRecs, err := e.sendHandshakeMessage(&Certificate{Certificate: [][]byte{e.localCert.Raw}})
	if err != nil {
		return nil, 0, false, err
	}
	out = append(out, certRecs...)

	signed := signedParams(e.clientRandom, e.serverRandom, curve, e.ecdh.pub)
	sig, err := signParams(e.localKey, signed)
	if err != nil {
		return nil, 0, false, err
	}
	skeRecs, err := e.sendHandshakeMessage(&ServerKeyExchange{
		Curve:         curve,
		PublicKey:     e.ecdh.pub,
		SignatureHash: signatureHashAlgorithm{HashAlgorithmSHA256, signatureAlgorithmECDSA},
		Signature:     sig,
	})
	if err != nil {
		return nil, 0, false, err
	}
	out = append(out, skeRecs...)

	crRecs, err := e.sendHandshakeMessage(&CertificateRequest{
		CertificateTypes:        []byte{byte(certificateTypeECDSASign)},
		SignatureHashAlgorithms: defaultSignatureHashAlgorithms,
	})
	if err != nil {
		return nil, 0, false, err
	}
	out = append(out, crRecs...)

	doneRecs, err := e.sendHandshakeMessage(&ServerHelloDone{})
	if err != nil {
		return nil, 0, false, err
	}
	out = append(out, doneRecs...)

	e.state = stateWaitClientFlight
	return out, initialRetransmitTimeout, false, nil
}

// verifyClientFinished validates the client's second flight: its optional
// Certificate/CertificateVerify, ClientKeyExchange, and Finished.
func (e *handshakeEngine) verifyClientFinished(fl *flight) error {
	ckeMsg, ok := fl.messages[HandshakeTypeClientKeyExchange]
	if !ok {
		return errUnexpectedMessage
	}
	cke := ckeMsg.Message.(*ClientKeyExchange)

	premasterSecret, err := e.ecdh.sharedSecret(cke.PublicKey)
	if err != nil {
		return err
	}

	if certMsg, ok := fl.messages[HandshakeTypeCertificate]; ok {
		chain := certMsg.Message.(*Certificate).Certificate
		if len(chain) > 0 {
			cert, err := x509.ParseCertificate(chain[0])
			if err != nil {
				return errors.Errorf("dtls: parse client certificate: %v", err)
			}
			e.remoteCert = cert

			cvMsg, ok := fl.messages[HandshakeTypeCertificateVerify]
			if !ok {
				return errUnexpectedMessage
			}
			cv := cvMsg.Message.(*CertificateVerify)
			// The client signed the transcript before its own
			// CertificateVerify, so that rule is left out here.
			rules := transcriptRules(false)
			transcriptHash := e.cache.sessionHash(cipherSuiteHashSHA256(), rules[:len(rules)-1]...)
			if err := verifyParams(cert.PublicKey, transcriptHash, cv.Signature); err != nil {
				return err
			}
		}
	}

	e.masterSecret = e.deriveMasterSecret(premasterSecret)
	if err := e.cipherSuite.init(e.masterSecret, marshalRandom(e.clientRandom), marshalRandom(e.serverRandom), false); err != nil {
		return err
	}

	finMsg, ok := fl.messages[HandshakeTypeFinished]
	if !ok {
		return errUnexpectedMessage
	}
	expected := e.verifyData("client finished", false)
	got := finMsg.Message.(*Finished).VerifyData
	if !constantTimeEqual(got, expected) {
		return errVerifyDataMismatch
	}
	return nil
}

// buildServerFinished sends the server's ChangeCipherSpec+Finished,
// completing the handshake.
func (e *handshakeEngine) buildServerFinished() ([][]byte, error) {
	ccsRec, err := e.sendChangeCipherSpec()
	if err != nil {
		return nil, err
	}
	finRecs, err := e.sendHandshakeMessage(&Finished{VerifyData: e.verifyData("server finished", true)})
	if err != nil {
		return nil, err
	}
	return append([][]byte{ccsRec}, finRecs...), nil
}
