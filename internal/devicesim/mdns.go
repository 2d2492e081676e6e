package devicesim

import (
	"fmt"

	"github.com/grandcat/zeroconf"
	"github.com/muurk/fmremote/internal/discovery"
	"github.com/muurk/fmremote/internal/logging"
	"go.uber.org/zap"
)

// Advertiser announces the simulator over mDNS so "fmremote scan" finds it
type Advertiser struct {
	server *zeroconf.Server
}

// Advertise registers instance under the tuner service type on port
func Advertise(instance string, port int, title string) (*Advertiser, error) {
	txt := []string{"path=/", "model=fmremote-sim"}
	if title != "" {
		txt = append(txt, "title="+title)
	}

	srv, err := zeroconf.Register(instance, discovery.ServiceType, discovery.ServiceDomain, port, txt, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to register mDNS service: %w", err)
	}

	logging.Info("Advertising simulator over mDNS",
		zap.String("instance", instance),
		zap.String("service", discovery.ServiceType),
		zap.Int("port", port),
	)
	return &Advertiser{server: srv}, nil
}

// Shutdown withdraws the advertisement
func (a *Advertiser) Shutdown() {
	if a == nil || a.server == nil {
		return
	}
	a.server.Shutdown()
}
