package fingerprint

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/suite"
)

// FingerprintSuite tests the device fingerprint derivation. Determinism and
// one-way hashing are pure function contracts not observable through the HTTP
// surface, so they are pinned here.
type FingerprintSuite struct {
	suite.Suite
}

func TestFingerprintSuite(t *testing.T) {
	suite.Run(t, new(FingerprintSuite))
}

func (s *FingerprintSuite) TestDeterminism() {
	const (
		ua   = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"
		lang = "en-US,en;q=0.9"
		enc  = "gzip, deflate, br"
	)

	s.Run("identical inputs yield identical fingerprints", func() {
		fp1 := Compute(ua, lang, enc)
		fp2 := Compute(ua, lang, enc)

		s.Equal(fp1, fp2)
		s.Len(fp1, 64) // SHA-256 hex
	})

	s.Run("changing any one input changes the fingerprint", func() {
		base := Compute(ua, lang, enc)

		s.NotEqual(base, Compute(ua+"x", lang, enc))
		s.NotEqual(base, Compute(ua, "fr-FR", enc))
		s.NotEqual(base, Compute(ua, lang, "identity"))
	})

	s.Run("missing headers are treated as empty strings", func() {
		fp := Compute("", "", "")

		s.Len(fp, 64)
		s.Equal(fp, Compute("", "", ""))
	})

	s.Run("output is lowercase hex", func() {
		fp := Compute(ua, lang, enc)
		s.Equal(strings.ToLower(fp), fp)
		s.NotContains(fp, ua)
	})
}

func (s *FingerprintSuite) TestDescribeUserAgent() {
	s.Run("empty user agent returns unknown device", func() {
		s.Equal("Unknown Device", DescribeUserAgent(""))
	})

	s.Run("chrome on desktop includes browser and OS", func() {
		ua := "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"
		label := DescribeUserAgent(ua)

		s.Contains(label, "Chrome")
		s.Contains(label, "on")
	})

	s.Run("unparseable user agent still renders a label", func() {
		label := DescribeUserAgent("Unknown/1.0")

		s.Contains(label, "on")
		s.NotEmpty(label)
	})
}
