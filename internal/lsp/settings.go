package lsp

import (
	"encoding/json"

	"mend/internal/correction"
)

func (s *Server) handleDidChangeConfiguration(msg *rpcMessage) error {
	if len(msg.Params) == 0 {
		return nil
	}
	var params didChangeConfigurationParams
	if err := json.Unmarshal(msg.Params, &params); err != nil {
		return nil
	}
	s.applySettings(params.Settings)
	return nil
}

// applySettings merges client settings of the form {"mend": {...}} over
// the configuration file.
func (s *Server) applySettings(raw json.RawMessage) {
	if len(raw) == 0 {
		return
	}
	var settings lspSettings
	if err := json.Unmarshal(raw, &settings); err != nil {
		s.logf("ignoring settings: %v", err)
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	a := settings.Mend.Assist
	if a.Disabled != nil {
		s.overrides.Disabled = a.Disabled
	}
	if a.MaxProposals != nil {
		s.overrides.MaxProposals = a.MaxProposals
	}
	if a.Relevance != nil {
		s.overrides.Relevance = a.Relevance
	}
	if settings.Mend.LSP.Trace != nil {
		s.traceLSP = *settings.Mend.LSP.Trace
	}
}

// settings returns the correction settings for a document with content.
func (s *Server) settings(content []byte) correction.Settings {
	s.mu.Lock()
	cfg := s.cfg
	o := s.overrides
	s.mu.Unlock()
	if o.Disabled != nil {
		cfg.Assist.Disabled = o.Disabled
	}
	if o.MaxProposals != nil {
		cfg.Assist.MaxProposals = *o.MaxProposals
	}
	if o.Relevance != nil {
		cfg.Assist.Relevance = o.Relevance
	}
	return cfg.Settings(content)
}

func (s *Server) currentTrace() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.traceLSP
}
