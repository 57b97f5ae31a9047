package xflake

import (
	"testing"
)

func FuzzParse(f *testing.F) {
	f.Add(vectorID, vectorEpoch)
	f.Add(int64(0), int64(0))
	f.Add(int64(-1), int64(-1))
	f.Add(Pack(MaxTimestamp, MaxInstance, MaxSequence), int64(1))

	f.Fuzz(func(t *testing.T, raw, epoch int64) {
		sf := Parse(raw, epoch)
		if sf.Value() != raw {
			t.Fatalf("Parse(%d).Value() = %d", raw, sf.Value())
		}
		if sf.Instance() < 0 || sf.Instance() > MaxInstance || sf.Seq() < 0 || sf.Seq() > MaxSequence {
			t.Fatalf("Parse(%d) fields out of range: %+v", raw, sf)
		}

		strict, err := ParseStrict(raw, epoch)
		if (raw < 0 || epoch < 0) != (err != nil) {
			t.Fatalf("ParseStrict(%d, %d) err = %v", raw, epoch, err)
		}
		if err == nil {
			if !strict.IsValid() {
				t.Fatalf("ParseStrict(%d, %d) produced invalid snowflake", raw, epoch)
			}
			if _, err := New(strict.Timestamp(), strict.Instance(), strict.Epoch(), strict.Seq()); err != nil {
				t.Fatalf("New rejected strict parse of %d: %v", raw, err)
			}
		}
	})
}

func FuzzParseString(f *testing.F) {
	f.Add("856165981072306191", "decimal")
	f.Add("6i65idwbw8wf", "base36")
	f.Add("", "base58")
	f.Add("zz", "base2")

	f.Fuzz(func(t *testing.T, s, encName string) {
		enc, err := ParseEncoding(encName)
		if err != nil {
			return
		}
		sf, err := ParseString(s, enc, 0)
		if err != nil {
			return
		}
		out, err := sf.Format(enc)
		if sf.Value() < 0 && (enc == EncodingBase32 || enc == EncodingBase58) {
			if err == nil {
				t.Fatalf("Format(%v) accepted negative id %d", enc, sf.Value())
			}
			return
		}
		if err != nil {
			t.Fatalf("Format(%v) failed: %v", enc, err)
		}
		again, err := ParseString(out, enc, 0)
		if err != nil || again.Value() != sf.Value() {
			t.Fatalf("round trip %q -> %q mismatch: %v", s, out, err)
		}
	})
}
