package host

import (
	"bytes"
	"crypto/ed25519"
	"crypto/rand"
	"crypto/sha256"
	"errors"
	"fmt"

	"github.com/veraison/go-cose"

	"github.com/forestrie/go-nftstaking/identity"
	"github.com/forestrie/go-nftstaking/instruction"
)

var (
	ErrBadSignature    = errors.New("host: signature does not verify")
	ErrNoKeyID         = errors.New("host: signature has no key id")
	ErrDigestMismatch  = errors.New("host: signature is for a different request")
	ErrUnsupportedAlgo = errors.New("host: unsupported signature algorithm")
)

// Digest returns the value signed by every signer of ins.
func Digest(ins instruction.Instruction) []byte {
	h := sha256.New()
	h.Write(ins.ProgramID[:])
	for _, m := range ins.Accounts {
		h.Write(m.Key[:])
		var flags [2]byte
		if m.Signer {
			flags[0] = 1
		}
		if m.Writable {
			flags[1] = 1
		}
		h.Write(flags[:])
	}
	h.Write(ins.Data)
	return h.Sum(nil)
}

// Sign returns a COSE_Sign1 (EdDSA) over the digest of ins. The signer's
// identity is its public key and is carried as the key id.
func Sign(ins instruction.Instruction, key ed25519.PrivateKey) ([]byte, error) {
	signer, err := cose.NewSigner(cose.AlgorithmEd25519, key)
	if err != nil {
		return nil, err
	}
	pub, ok := key.Public().(ed25519.PublicKey)
	if !ok {
		return nil, ErrUnsupportedAlgo
	}

	msg := cose.NewSign1Message()
	msg.Headers.Protected.SetAlgorithm(cose.AlgorithmEd25519)
	msg.Headers.Protected[cose.HeaderLabelKeyID] = []byte(pub)
	msg.Payload = Digest(ins)

	if err = msg.Sign(rand.Reader, nil, signer); err != nil {
		return nil, err
	}
	return msg.MarshalCBOR()
}

// verify checks sig is a valid signature over digest and returns the signer.
func verify(sig []byte, digest []byte) (identity.ID, error) {
	var msg cose.Sign1Message
	if err := msg.UnmarshalCBOR(sig); err != nil {
		return identity.ID{}, fmt.Errorf("%w: %v", ErrBadSignature, err)
	}
	alg, err := msg.Headers.Protected.Algorithm()
	if err != nil {
		return identity.ID{}, fmt.Errorf("%w: %v", ErrUnsupportedAlgo, err)
	}
	if alg != cose.AlgorithmEd25519 {
		return identity.ID{}, fmt.Errorf("%w: %v", ErrUnsupportedAlgo, alg)
	}
	kid, ok := msg.Headers.Protected[cose.HeaderLabelKeyID].([]byte)
	if !ok {
		return identity.ID{}, ErrNoKeyID
	}
	signerID, err := identity.FromBytes(kid)
	if err != nil {
		return identity.ID{}, fmt.Errorf("%w: %v", ErrNoKeyID, err)
	}
	verifier, err := cose.NewVerifier(cose.AlgorithmEd25519, ed25519.PublicKey(kid))
	if err != nil {
		return identity.ID{}, err
	}
	if err = msg.Verify(nil, verifier); err != nil {
		return identity.ID{}, fmt.Errorf("%w: %v", ErrBadSignature, err)
	}
	if !bytes.Equal(msg.Payload, digest) {
		return identity.ID{}, ErrDigestMismatch
	}
	return signerID, nil
}
