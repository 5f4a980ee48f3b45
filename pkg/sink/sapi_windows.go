//go:build windows

package sink

import (
	"fmt"
	"sync"

	"github.com/go-ole/go-ole"
	"github.com/go-ole/go-ole/oleutil"
)

// SAPI speech flags: async delivery, purging anything still being spoken.
// Purge keeps fast-moving UI text from piling up in the engine.
const speakFlags = 3 // SVSFlagsAsync | SVSFPurgeBeforeSpeak

// SAPISpeaker delivers text through the Windows SAPI5 voice via OLE.
type SAPISpeaker struct {
	mu      sync.Mutex
	voiceID string
	rate    int
}

// NewSAPISpeaker creates a speaker bound to the given voice ID (empty for
// the system default) and rate (-10..10).
func NewSAPISpeaker(voiceID string, rate int) (*SAPISpeaker, error) {
	return &SAPISpeaker{voiceID: voiceID, rate: rate}, nil
}

func (s *SAPISpeaker) Name() string { return "sapi" }

// SetVoiceID switches the voice for subsequent utterances. The SpVoice
// object is rebuilt per Deliver, so the change applies immediately.
func (s *SAPISpeaker) SetVoiceID(id string) {
	s.mu.Lock()
	s.voiceID = id
	s.mu.Unlock()
}

// SetRate changes the speaking rate (-10..10) for subsequent utterances.
func (s *SAPISpeaker) SetRate(rate int) {
	s.mu.Lock()
	s.rate = rate
	s.mu.Unlock()
}

// Deliver speaks the text asynchronously, purging any utterance still in
// progress. A fresh SpVoice is created per call so a wedged COM object
// can't poison later announcements.
func (s *SAPISpeaker) Deliver(text string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := ole.CoInitialize(0); err == nil {
		defer ole.CoUninitialize()
	}

	unknown, err := oleutil.CreateObject("SAPI.SpVoice")
	if err != nil {
		return fmt.Errorf("failed to create SAPI.SpVoice: %w", err)
	}
	voice, err := unknown.QueryInterface(ole.IID_IDispatch)
	if err != nil {
		unknown.Release()
		return fmt.Errorf("QueryInterface SpVoice failed: %w", err)
	}
	defer voice.Release()

	if s.voiceID != "" {
		s.setVoiceByID(voice, s.voiceID)
	}
	if s.rate != 0 {
		_, _ = oleutil.PutProperty(voice, "Rate", s.rate)
	}

	if _, err := oleutil.CallMethod(voice, "Speak", text, speakFlags); err != nil {
		return fmt.Errorf("Speak failed: %w", err)
	}

	return nil
}

func (s *SAPISpeaker) setVoiceByID(voice *ole.IDispatch, voiceID string) {
	tokensVar, err := oleutil.CallMethod(voice, "GetVoices", "", "")
	if err != nil {
		return
	}
	tokens := tokensVar.ToIDispatch()
	defer tokens.Release()

	_ = oleutil.ForEach(tokens, func(v *ole.VARIANT) error {
		item := v.ToIDispatch()
		if item == nil {
			return nil
		}
		defer item.Release()
		idVar, _ := oleutil.CallMethod(item, "GetId")
		if idVar != nil && idVar.ToString() == voiceID {
			_, _ = oleutil.PutPropertyRef(voice, "Voice", item)
		}
		return nil
	})
}
