package models

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	dErrors "petition/pkg/domain-errors"
)

type RequestsSuite struct {
	suite.Suite
}

func TestRequestsSuite(t *testing.T) {
	suite.Run(t, new(RequestsSuite))
}

func (s *RequestsSuite) valid() *SignRequest {
	return &SignRequest{
		FirstName:         "Alice",
		LastName:          "Example",
		Email:             "alice@example.com",
		State:             "CA",
		VerificationToken: "token",
	}
}

func (s *RequestsSuite) TestNormalize() {
	req := &SignRequest{
		FirstName:          "  Alice ",
		LastName:           " Example",
		Email:              "  Alice@EXAMPLE.com ",
		State:              " CA ",
		Comments:           "  hi  ",
		CongressionalTitle: " Senator ",
	}
	req.Normalize()

	s.Equal("Alice", req.FirstName)
	s.Equal("alice@example.com", req.Email)
	s.Equal("CA", req.State)
	s.Equal("hi", req.Comments)
	s.Equal("senator", req.CongressionalTitle)
}

func (s *RequestsSuite) TestValidate() {
	s.Run("accepts a complete request", func() {
		s.Require().NoError(s.valid().Validate())
	})

	s.Run("reports the first missing field", func() {
		req := s.valid()
		req.FirstName = ""
		req.Email = ""

		err := req.Validate()
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeValidation))
		s.Equal("firstName is required", dErrors.MessageFor(err))
	})

	s.Run("rejects malformed email", func() {
		req := s.valid()
		req.Email = "missing-at-sign"

		err := req.Validate()
		s.Require().Error(err)
		s.Equal("email is invalid", dErrors.MessageFor(err))
	})

	s.Run("rejects unsupported congressional title", func() {
		req := s.valid()
		req.CongressionalTitle = "governor"

		err := req.Validate()
		s.Require().Error(err)
		s.Equal("congressionalTitle is invalid", dErrors.MessageFor(err))
	})

	s.Run("accepts senator and representative", func() {
		for _, title := range []string{"senator", "representative", ""} {
			req := s.valid()
			req.CongressionalTitle = title
			s.Require().NoError(req.Validate())
		}
	})
}

func (s *RequestsSuite) TestConsentDefault() {
	s.Run("absent flag defaults to consenting", func() {
		var req SignRequest
		s.Require().NoError(json.Unmarshal([]byte(`{"email":"a@b.c"}`), &req))
		s.True(req.Consent())
	})

	s.Run("explicit false is preserved", func() {
		var req SignRequest
		s.Require().NoError(json.Unmarshal([]byte(`{"consentToPublicListing":false}`), &req))
		s.False(req.Consent())
	})
}

func (s *RequestsSuite) TestSignatoryBuilder() {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	req := s.valid()
	req.IsCongressMember = true
	req.CongressionalTitle = "senator"
	req.District = "CA-12"

	sig := req.Signatory("10.0.0.1", "fp-abc", now)

	s.Equal("alice@example.com", sig.Email)
	s.Equal("10.0.0.1", sig.SourceIP)
	s.Equal("fp-abc", sig.DeviceFingerprint)
	s.Equal(now, sig.SubmittedAt)
	s.True(sig.ConsentToPublicListing)
	s.True(sig.IsCongressMember)
	s.Equal(TitleSenator, sig.CongressionalTitle)
}

func (s *RequestsSuite) TestPublicView() {
	base := Signatory{
		FirstName:        "Alice",
		LastName:         "Example",
		Email:            "alice@example.com",
		State:            "CA",
		SourceIP:         "10.0.0.1",
		IsCongressMember: false,
	}

	s.Run("consenting entries expose names", func() {
		sig := base
		sig.ConsentToPublicListing = true

		view := sig.PublicView()
		s.True(view.IsPublic)
		s.Equal("Alice", view.FirstName)
		s.Equal("Example", view.LastName)
	})

	s.Run("non-consenting entries are redacted", func() {
		sig := base
		sig.ConsentToPublicListing = false

		view := sig.PublicView()
		s.False(view.IsPublic)
		s.Empty(view.FirstName)
		s.Empty(view.LastName)
	})

	s.Run("email and source IP never appear", func() {
		sig := base
		sig.ConsentToPublicListing = true

		payload, err := json.Marshal(sig.PublicView())
		s.Require().NoError(err)
		s.NotContains(string(payload), "alice@example.com")
		s.NotContains(string(payload), "10.0.0.1")
	})
}
