package lsp

import (
	"context"
	"sort"
	"sync/atomic"
	"time"

	"mend/internal/diag"
	"mend/internal/driver"
)

func (s *Server) scheduleDiagnostics() {
	s.mu.Lock()
	seq := atomic.AddUint64(&s.analysisSeq, 1)
	atomic.StoreUint64(&s.latestSeq, seq)
	if s.diagCancel != nil {
		s.diagCancel()
	}
	if s.debounceTimer != nil {
		s.debounceTimer.Stop()
	}
	s.debounceTimer = time.AfterFunc(s.debounce, func() {
		s.runDiagnostics(seq)
	})
	s.mu.Unlock()
}

type openDoc struct {
	uri     string
	text    string
	version int
}

// runDiagnostics analyzes every open document and publishes the results. A
// newer schedule cancels the run; an analysis whose document moved on while
// it ran is dropped.
func (s *Server) runDiagnostics(seq uint64) {
	if !s.isLatestSeq(seq) {
		return
	}
	s.mu.Lock()
	if s.diagCancel != nil {
		s.diagCancel()
	}
	ctx, cancel := context.WithCancel(s.context())
	s.diagCancel = cancel
	docs := make([]openDoc, 0, len(s.openDocs))
	for uri, text := range s.openDocs {
		docs = append(docs, openDoc{uri: uri, text: text, version: s.versions[uri]})
	}
	trace := s.traceLSP
	s.mu.Unlock()
	defer cancel()

	sort.Slice(docs, func(i, j int) bool { return docs[i].uri < docs[j].uri })
	start := time.Now()
	for _, doc := range docs {
		path := uriToPath(doc.uri)
		if _, ok := driver.LangOf(path); !ok {
			continue
		}
		a, err := s.analyze(ctx, path, []byte(doc.text))
		if ctx.Err() != nil || !s.isLatestSeq(seq) {
			if trace {
				s.logf("analysis seq=%d discarded: superseded", seq)
			}
			return
		}
		if err != nil {
			s.logf("analyze %s: %v", path, err)
			continue
		}
		if !s.storeAnalysis(doc, a) {
			continue
		}
		s.publishDiagnostics(doc, a)
	}
	if trace {
		s.logf("analysis seq=%d docs=%d in %s", seq, len(docs), time.Since(start))
	}
}

// storeAnalysis records a for doc unless the document changed or closed meanwhile.
func (s *Server) storeAnalysis(doc openDoc, a *driver.Analysis) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	text, open := s.openDocs[doc.uri]
	if !open || text != doc.text || s.versions[doc.uri] != doc.version {
		return false
	}
	s.analyses[doc.uri] = docAnalysis{version: doc.version, analysis: a}
	return true
}

func (s *Server) publishDiagnostics(doc openDoc, a *driver.Analysis) {
	ds := a.Diagnostics()
	list := make([]lspDiagnostic, 0, min(len(ds), s.maxDiagnostics))
	for i := range ds {
		if len(list) == s.maxDiagnostics {
			break
		}
		list = append(list, toLSPDiagnostic(doc.uri, a, &ds[i]))
	}
	s.mu.Lock()
	if len(list) > 0 {
		s.published[doc.uri] = struct{}{}
	} else {
		delete(s.published, doc.uri)
	}
	s.mu.Unlock()
	version := doc.version
	if err := s.sendPublish(doc.uri, &version, list); err != nil {
		s.logf("failed to publish diagnostics: %v", err)
	}
}

func (s *Server) clearPublishedDiagnostics() {
	s.mu.Lock()
	uris := make([]string, 0, len(s.published))
	for uri := range s.published {
		uris = append(uris, uri)
	}
	s.published = make(map[string]struct{})
	s.mu.Unlock()
	sort.Strings(uris)
	for _, uri := range uris {
		if err := s.sendPublish(uri, nil, nil); err != nil {
			s.logf("failed to clear diagnostics: %v", err)
		}
	}
}

func toLSPDiagnostic(uri string, a *driver.Analysis, d *diag.Diagnostic) lspDiagnostic {
	out := lspDiagnostic{
		Range:    rangeForSpan(a.File, d.Primary),
		Severity: lspSeverity(d.Severity),
		Code:     d.Code.ID(),
		Source:   "mend",
		Message:  d.Message,
	}
	for _, n := range d.Notes {
		f := a.FileSet.Get(n.Span.File)
		if f == nil {
			continue
		}
		noteURI := uri
		if f.ID != a.File.ID {
			noteURI = pathToURI(f.Path)
		}
		out.RelatedInformation = append(out.RelatedInformation, diagnosticRelatedInformation{
			Location: location{URI: noteURI, Range: rangeForSpan(f, n.Span)},
			Message:  n.Msg,
		})
	}
	return out
}

func lspSeverity(s diag.Severity) int {
	switch s {
	case diag.SevError:
		return 1
	case diag.SevWarning:
		return 2
	}
	return 3
}
