//go:build !windows

package sink

import "fmt"

// SAPISpeaker is Windows-only; on other platforms construction fails and
// the caller falls back to the stub sink.
type SAPISpeaker struct{}

func NewSAPISpeaker(voiceID string, rate int) (*SAPISpeaker, error) {
	return nil, fmt.Errorf("sapi speech engine is only available on windows")
}

func (s *SAPISpeaker) Name() string { return "sapi" }

func (s *SAPISpeaker) SetVoiceID(id string) {}

func (s *SAPISpeaker) SetRate(rate int) {}

func (s *SAPISpeaker) Deliver(text string) error {
	return fmt.Errorf("sapi speech engine is only available on windows")
}
