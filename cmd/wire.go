// SPDX-License-Identifier: MIT
package cmd

import (
	"context"
	"fmt"

	"earshot/internal/analysis"
	"earshot/internal/classify"
	"earshot/internal/config"
	applog "earshot/internal/log"
	"earshot/internal/recognition"
	"earshot/internal/store"
	"earshot/internal/transport"
	"earshot/internal/transport/udp"
)

// newOrchestrator builds the orchestrator; the subsystems are created lazily
// on the first recognition.
func newOrchestrator(cfg *config.Config) *recognition.Orchestrator {
	provider := func(ctx context.Context) (*recognition.Subsystems, error) {
		ecfg, err := cfg.ExtractorConfig()
		if err != nil {
			return nil, err
		}
		extractor, err := analysis.NewExtractor(ecfg)
		if err != nil {
			return nil, fmt.Errorf("create extractor: %w", err)
		}

		subs := &recognition.Subsystems{
			Extractor:   extractor,
			Classifiers: classify.Heuristics(),
		}
		if cfg.Recognition.ModelEnabled {
			subs.Model = classify.ModelClassifier{Temperature: cfg.Recognition.ModelTemperature}
		}
		if cfg.Transcription.URL != "" {
			subs.Transcriber = recognition.NewHTTPTranscriber(cfg.Transcription.URL, cfg.Transcription.Timeout)
		}
		return subs, nil
	}

	return recognition.New(provider, recognition.Options{
		ReadyTimeout:         cfg.Recognition.ReadyTimeout,
		ClassifierTimeout:    cfg.Recognition.ClassifierTimeout,
		TranscriptionTimeout: cfg.Transcription.Timeout,
	})
}

// newTransports assembles the configured outputs. The logging transport is
// always present. wsAddr overrides the configured websocket address when set.
func newTransports(cfg *config.Config, wsAddr string) (transport.Multi, error) {
	out := transport.Multi{transport.NewLoggingTransport()}

	if wsAddr == "" {
		wsAddr = cfg.Transport.WebSocketAddr
	}
	if wsAddr != "" {
		ws := transport.NewWebSocketTransport()
		bound, err := ws.Listen(wsAddr)
		if err != nil {
			ws.Close()
			out.Close()
			return nil, fmt.Errorf("listen for progress clients: %w", err)
		}
		applog.Infof("progress clients can connect to ws://%s/ws", bound)
		out = append(out, ws)
	}

	if cfg.Transport.UDPEnabled {
		sender, err := udp.NewUDPSender(cfg.Transport.UDPTargetAddress)
		if err != nil {
			out.Close()
			return nil, err
		}
		pub, err := udp.NewFeaturePublisher(sender)
		if err != nil {
			sender.Close()
			out.Close()
			return nil, err
		}
		out = append(out, pub)
	}
	return out, nil
}

// openStore opens the history database, or returns nil when the store is
// disabled.
func openStore(cfg *config.Config) (*store.Store, error) {
	if !cfg.Store.Enabled {
		return nil, nil
	}
	return store.Open(cfg.Store.Path)
}
