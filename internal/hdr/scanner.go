package hdr

import (
	"log/slog"

	"github.com/1broseidon/hdrlaunch/internal/platform"
)

// Scanner finds displays that can output HDR.
type Scanner struct {
	session platform.HDRSession
	logger  *slog.Logger
}

// NewScanner creates a scanner over an open vendor session.
func NewScanner(session platform.HDRSession, logger *slog.Logger) *Scanner {
	if logger == nil {
		logger = slog.Default()
	}
	return &Scanner{session: session, logger: logger}
}

// Scan returns the ST.2084 capable displays connected to the first GPU.
// Any failed query yields an empty result.
func (s *Scanner) Scan() []platform.DisplayID {
	ids, err := s.scan()
	if err != nil {
		s.logger.Debug("hdr scan aborted", "error", err)
		return nil
	}
	return ids
}

func (s *Scanner) scan() ([]platform.DisplayID, error) {
	gpus, st := s.session.PhysicalGPUs()
	if !st.OK() {
		return nil, newError(KindQuery, st, "enumerate physical gpus")
	}
	if len(gpus) == 0 {
		return nil, newError(KindQuery, platform.StatusNvidiaDeviceNone, "enumerate physical gpus")
	}
	// Only the first GPU is considered.
	gpu := gpus[0]

	count, st := s.session.ConnectedDisplayIDs(gpu, nil)
	if !st.OK() {
		return nil, newError(KindQuery, st, "count connected displays")
	}
	if count == 0 {
		return nil, nil
	}

	connected := make([]platform.DisplayID, count)
	n, st := s.session.ConnectedDisplayIDs(gpu, connected)
	if !st.OK() {
		return nil, newError(KindQuery, st, "fetch connected displays")
	}
	connected = connected[:min(n, count)]

	var eligible []platform.DisplayID
	for _, id := range connected {
		caps, st := s.session.HDRCapabilities(id)
		if !st.OK() {
			e := newError(KindQuery, st, "query hdr capabilities")
			e.Display = id
			return nil, e
		}
		if caps.SupportsST2084 {
			eligible = append(eligible, id)
		}
	}
	return eligible, nil
}
