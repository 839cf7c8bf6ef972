package providers

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/samber/do/v2"

	"github.com/linkmarket/link-server/internal/config"
	"github.com/linkmarket/link-server/internal/logger"
	"github.com/linkmarket/link-server/internal/notify"
)

// BroadcasterHandle tracks in-flight broadcasts so shutdown can wait for them.
type BroadcasterHandle struct {
	*notify.Broadcaster
	wg sync.WaitGroup
}

// PostCreated implements service.Announcer.
func (h *BroadcasterHandle) PostCreated(ctx context.Context, post notify.PostCreated, recipients []string) notify.Result {
	h.wg.Add(1)
	defer h.wg.Done()
	return h.Broadcaster.PostCreated(ctx, post, recipients)
}

// Shutdown implements do.Shutdownable.
func (h *BroadcasterHandle) Shutdown() error {
	done := make(chan struct{})
	go func() {
		h.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-time.After(shutdownTimeout):
		return errors.New("timed out waiting for broadcasts")
	}
}

// ProvideBroadcaster provides the WhatsApp broadcast relay.
func ProvideBroadcaster(i do.Injector) (*BroadcasterHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	b := notify.NewBroadcaster(notify.Config{
		AccessToken:      cfg.WhatsApp.AccessToken,
		PhoneNumberID:    cfg.WhatsApp.PhoneNumberID,
		APIVersion:       cfg.WhatsApp.APIVersion,
		TemplateName:     cfg.WhatsApp.TemplateName,
		TemplateLanguage: cfg.WhatsApp.TemplateLanguage,
		GraphBaseURL:     cfg.WhatsApp.GraphBaseURL,
	}, log.Logger)

	if b.Enabled() {
		log.Info("WhatsApp broadcast enabled", "recipients", len(cfg.WhatsApp.Recipients))
	} else {
		log.Info("WhatsApp broadcast disabled - credentials not configured")
	}

	return &BroadcasterHandle{Broadcaster: b}, nil
}
