package synthledger

import (
	"bytes"
	"crypto/ed25519"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/binary"
	"encoding/json"
	"io"

	"github.com/klauspost/compress/zstd"
)

// fingerprintMagic is the 8-byte prefix every sealed fingerprint
// container begins with (spec §6): "DSF" + format version 1 + four
// reserved zero bytes.
var fingerprintMagic = [8]byte{'D', 'S', 'F', 0x01, 0x00, 0x00, 0x00, 0x00}

const fingerprintFormatVersion byte = 1

// SignatureAlgorithm identifies how a sealed container's signature
// header was produced.
type SignatureAlgorithm byte

const (
	SignatureNone    SignatureAlgorithm = 0
	SignatureHMACSHA256 SignatureAlgorithm = 1
	SignatureEd25519 SignatureAlgorithm = 2
)

// sectionName identifies one length-prefixed section of a sealed
// fingerprint container (spec §6's section table).
type sectionName string

const (
	sectionManifest     sectionName = "manifest"
	sectionSchema       sectionName = "schema"
	sectionStatistics   sectionName = "statistics"
	sectionCorrelations sectionName = "correlations"
	sectionPrivacyAudit sectionName = "privacy_audit"
)

// Signer produces a detached signature over a sealed container's byte
// body, keyed by a named key.
type Signer struct {
	Algorithm SignatureAlgorithm
	KeyID     string
	HMACKey   []byte          // used when Algorithm == SignatureHMACSHA256
	Ed25519Key ed25519.PrivateKey // used when Algorithm == SignatureEd25519
}

func (s Signer) sign(body []byte) []byte {
	switch s.Algorithm {
	case SignatureHMACSHA256:
		mac := hmac.New(sha256.New, s.HMACKey)
		mac.Write(body)
		return mac.Sum(nil)
	case SignatureEd25519:
		return ed25519.Sign(s.Ed25519Key, body)
	default:
		return nil
	}
}

// Verifier checks a sealed container's signature against a named key.
type Verifier struct {
	Algorithm  SignatureAlgorithm
	KeyID      string
	HMACKey    []byte
	Ed25519Key ed25519.PublicKey
}

func (v Verifier) verify(body, sig []byte) bool {
	switch v.Algorithm {
	case SignatureHMACSHA256:
		mac := hmac.New(sha256.New, v.HMACKey)
		mac.Write(body)
		return hmac.Equal(mac.Sum(nil), sig)
	case SignatureEd25519:
		return ed25519.Verify(v.Ed25519Key, body, sig)
	default:
		return true
	}
}

// sealedSection is one entry of the section table: a name, and the
// zstd-compressed JSON bytes of its payload.
type sealedSection struct {
	Name sectionName
	Data []byte
}

// SealFingerprint serializes fp into the sealed binary container
// format of spec §6: magic bytes, version, optional signature header,
// then a section table (manifest/schema/statistics/correlations?/
// privacy_audit), each section zstd-compressed after JSON encoding.
// When signer is non-nil the body following the signature header is
// signed and the signature embedded in the header.
func SealFingerprint(fp Fingerprint, signer *Signer) ([]byte, error) {
	sections, err := buildSections(fp)
	if err != nil {
		return nil, err
	}

	var body bytes.Buffer
	if err := binary.Write(&body, binary.LittleEndian, uint32(len(sections))); err != nil {
		return nil, err
	}
	for _, s := range sections {
		if err := writeSection(&body, s); err != nil {
			return nil, err
		}
	}

	var out bytes.Buffer
	out.Write(fingerprintMagic[:])
	out.WriteByte(fingerprintFormatVersion)

	if signer != nil && signer.Algorithm != SignatureNone {
		sig := signer.sign(body.Bytes())
		out.WriteByte(byte(signer.Algorithm))
		writeLengthPrefixedString(&out, signer.KeyID)
		writeLengthPrefixed(&out, sig)
	} else {
		out.WriteByte(byte(SignatureNone))
	}

	out.Write(body.Bytes())
	return out.Bytes(), nil
}

func buildSections(fp Fingerprint) ([]sealedSection, error) {
	var sections []sealedSection

	add := func(name sectionName, v any) error {
		raw, err := json.Marshal(v)
		if err != nil {
			return err
		}
		compressed, err := zstdCompress(raw)
		if err != nil {
			return err
		}
		sections = append(sections, sealedSection{Name: name, Data: compressed})
		return nil
	}

	if err := add(sectionManifest, fp.Manifest); err != nil {
		return nil, err
	}
	if err := add(sectionSchema, fp.Schema); err != nil {
		return nil, err
	}
	if err := add(sectionStatistics, fp.Statistics); err != nil {
		return nil, err
	}
	if fp.Correlations != nil {
		if err := add(sectionCorrelations, fp.Correlations); err != nil {
			return nil, err
		}
	}
	if err := add(sectionPrivacyAudit, fp.PrivacyAudit); err != nil {
		return nil, err
	}
	return sections, nil
}

func writeSection(w *bytes.Buffer, s sealedSection) error {
	writeLengthPrefixedString(w, string(s.Name))
	writeLengthPrefixed(w, s.Data)
	return nil
}

func writeLengthPrefixed(w *bytes.Buffer, data []byte) {
	var lenBuf [4]byte
	binary.LittleEndian.PutUint32(lenBuf[:], uint32(len(data)))
	w.Write(lenBuf[:])
	w.Write(data)
}

func writeLengthPrefixedString(w *bytes.Buffer, s string) {
	writeLengthPrefixed(w, []byte(s))
}

// OpenFingerprint reads and verifies a sealed container produced by
// SealFingerprint, returning CorruptContainer on a malformed body,
// InvalidSignature when a verifier is supplied and the signature does
// not check out.
func OpenFingerprint(data []byte, verifier *Verifier) (Fingerprint, error) {
	r := bytes.NewReader(data)

	var magic [8]byte
	if _, err := io.ReadFull(r, magic[:]); err != nil || magic != fingerprintMagic {
		return Fingerprint{}, NewError(ErrCorruptContainer, "bad magic bytes")
	}
	version, err := r.ReadByte()
	if err != nil {
		return Fingerprint{}, NewError(ErrCorruptContainer, "missing version byte")
	}
	if version != fingerprintFormatVersion {
		return Fingerprint{}, NewError(ErrCorruptContainer, "unsupported format version %d", version)
	}

	algByte, err := r.ReadByte()
	if err != nil {
		return Fingerprint{}, NewError(ErrCorruptContainer, "missing signature header")
	}
	alg := SignatureAlgorithm(algByte)

	var keyID string
	var sig []byte
	if alg != SignatureNone {
		keyID, err = readLengthPrefixedString(r)
		if err != nil {
			return Fingerprint{}, NewError(ErrCorruptContainer, "malformed signature key id: %v", err)
		}
		sig, err = readLengthPrefixed(r)
		if err != nil {
			return Fingerprint{}, NewError(ErrCorruptContainer, "malformed signature: %v", err)
		}
	}

	body, err := io.ReadAll(r)
	if err != nil {
		return Fingerprint{}, NewError(ErrCorruptContainer, "truncated body: %v", err)
	}

	if verifier != nil {
		if alg == SignatureNone || verifier.KeyID != keyID || !verifier.verify(body, sig) {
			return Fingerprint{}, NewError(ErrInvalidSignature, "fingerprint signature verification failed")
		}
	}

	return decodeSections(bytes.NewReader(body))
}

func decodeSections(r *bytes.Reader) (Fingerprint, error) {
	var count uint32
	if err := binary.Read(r, binary.LittleEndian, &count); err != nil {
		return Fingerprint{}, NewError(ErrCorruptContainer, "missing section count: %v", err)
	}

	var fp Fingerprint
	for i := uint32(0); i < count; i++ {
		name, err := readLengthPrefixedString(r)
		if err != nil {
			return Fingerprint{}, NewError(ErrCorruptContainer, "malformed section name: %v", err)
		}
		compressed, err := readLengthPrefixed(r)
		if err != nil {
			return Fingerprint{}, NewError(ErrCorruptContainer, "malformed section %s: %v", name, err)
		}
		raw, err := zstdDecompress(compressed)
		if err != nil {
			return Fingerprint{}, NewError(ErrCorruptContainer, "section %s decompress failed: %v", name, err)
		}

		switch sectionName(name) {
		case sectionManifest:
			if err := json.Unmarshal(raw, &fp.Manifest); err != nil {
				return Fingerprint{}, NewError(ErrCorruptContainer, "manifest decode failed: %v", err)
			}
		case sectionSchema:
			if err := json.Unmarshal(raw, &fp.Schema); err != nil {
				return Fingerprint{}, NewError(ErrCorruptContainer, "schema decode failed: %v", err)
			}
		case sectionStatistics:
			if err := json.Unmarshal(raw, &fp.Statistics); err != nil {
				return Fingerprint{}, NewError(ErrCorruptContainer, "statistics decode failed: %v", err)
			}
		case sectionCorrelations:
			fp.Correlations = &CorrelationMatrix{}
			if err := json.Unmarshal(raw, fp.Correlations); err != nil {
				return Fingerprint{}, NewError(ErrCorruptContainer, "correlations decode failed: %v", err)
			}
		case sectionPrivacyAudit:
			if err := json.Unmarshal(raw, &fp.PrivacyAudit); err != nil {
				return Fingerprint{}, NewError(ErrCorruptContainer, "privacy audit decode failed: %v", err)
			}
		}
	}
	return fp, nil
}

func readLengthPrefixed(r *bytes.Reader) ([]byte, error) {
	var length uint32
	if err := binary.Read(r, binary.LittleEndian, &length); err != nil {
		return nil, err
	}
	buf := make([]byte, length)
	if _, err := io.ReadFull(r, buf); err != nil {
		return nil, err
	}
	return buf, nil
}

func readLengthPrefixedString(r *bytes.Reader) (string, error) {
	buf, err := readLengthPrefixed(r)
	if err != nil {
		return "", err
	}
	return string(buf), nil
}

func zstdCompress(raw []byte) ([]byte, error) {
	enc, err := zstd.NewWriter(nil)
	if err != nil {
		return nil, err
	}
	defer enc.Close()
	return enc.EncodeAll(raw, nil), nil
}

func zstdDecompress(compressed []byte) ([]byte, error) {
	dec, err := zstd.NewReader(nil)
	if err != nil {
		return nil, err
	}
	defer dec.Close()
	return dec.DecodeAll(compressed, nil)
}
