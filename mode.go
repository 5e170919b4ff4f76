package cipherkit

import (
	"fmt"

	"github.com/allisson/go-cipherkit/internal/engine"
)

// Mode identifies a mode of operation. As with Algorithm, the numeric values
// mirror the native enumeration and must not be renumbered.
type Mode int

const (
	Ecb      Mode = engine.ModeEcb
	Cfb      Mode = engine.ModeCfb
	Cbc      Mode = engine.ModeCbc
	Stream   Mode = engine.ModeStream
	Ofb      Mode = engine.ModeOfb
	Ctr      Mode = engine.ModeCtr
	AesWrap  Mode = engine.ModeAesWrap
	Ccm      Mode = engine.ModeCcm
	Gcm      Mode = engine.ModeGcm
	Poly1305 Mode = engine.ModePoly1305
	Ocb      Mode = engine.ModeOcb
	Cfb8     Mode = engine.ModeCfb8
	Xts      Mode = engine.ModeXts
	Eax      Mode = engine.ModeEax
)

var modeNames = map[Mode]string{
	Ecb:      "ECB",
	Cfb:      "CFB",
	Cbc:      "CBC",
	Stream:   "STREAM",
	Ofb:      "OFB",
	Ctr:      "CTR",
	AesWrap:  "AESWRAP",
	Ccm:      "CCM",
	Gcm:      "GCM",
	Poly1305: "POLY1305",
	Ocb:      "OCB",
	Cfb8:     "CFB8",
	Xts:      "XTS",
	Eax:      "EAX",
}

// modeOIDs maps the NIST AES mode object identifiers (the
// 2.16.840.1.101.3.4.1 arc, all three key sizes) to modes.
var modeOIDs = map[string]Mode{
	"2.16.840.1.101.3.4.1.1":  Ecb,
	"2.16.840.1.101.3.4.1.2":  Cbc,
	"2.16.840.1.101.3.4.1.3":  Ofb,
	"2.16.840.1.101.3.4.1.4":  Cfb,
	"2.16.840.1.101.3.4.1.6":  Gcm,
	"2.16.840.1.101.3.4.1.7":  Ccm,
	"2.16.840.1.101.3.4.1.21": Ecb,
	"2.16.840.1.101.3.4.1.22": Cbc,
	"2.16.840.1.101.3.4.1.23": Ofb,
	"2.16.840.1.101.3.4.1.24": Cfb,
	"2.16.840.1.101.3.4.1.26": Gcm,
	"2.16.840.1.101.3.4.1.27": Ccm,
	"2.16.840.1.101.3.4.1.41": Ecb,
	"2.16.840.1.101.3.4.1.42": Cbc,
	"2.16.840.1.101.3.4.1.43": Ofb,
	"2.16.840.1.101.3.4.1.44": Cfb,
	"2.16.840.1.101.3.4.1.46": Gcm,
	"2.16.840.1.101.3.4.1.47": Ccm,
}

// ModeFromOID maps a standards-body object identifier in dotted-decimal form
// to a Mode. The second return value is false when the OID is unrecognized.
func ModeFromOID(oid string) (Mode, bool) {
	m, ok := modeOIDs[oid]
	return m, ok
}

// Modes returns every enumerated mode in ascending code order.
func Modes() []Mode {
	out := make([]Mode, 0, len(modeNames))
	for m := Ecb; m <= Eax; m++ {
		out = append(out, m)
	}
	return out
}

// String implements fmt.Stringer.
func (m Mode) String() string {
	if name, ok := modeNames[m]; ok {
		return name
	}
	return fmt.Sprintf("Mode(%d)", int(m))
}
