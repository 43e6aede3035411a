package rpc

import (
	"errors"
	"net"

	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	"github.com/wfunc/gridarena/logger"
)

// HealthService is the service name reported by the health server besides
// the overall ("") status.
const HealthService = "gridarena.Arena"

// HealthServer serves grpc.health.v1.Health.
type HealthServer struct {
	listener net.Listener
	grpc     *grpc.Server
	health   *health.Server
}

func NewHealthServer(addr string) (*HealthServer, error) {
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, err
	}
	hs := health.NewServer()
	gs := grpc.NewServer()
	healthpb.RegisterHealthServer(gs, hs)

	hs.SetServingStatus("", healthpb.HealthCheckResponse_NOT_SERVING)
	hs.SetServingStatus(HealthService, healthpb.HealthCheckResponse_NOT_SERVING)
	return &HealthServer{listener: listener, grpc: gs, health: hs}, nil
}

func (h *HealthServer) Addr() net.Addr {
	return h.listener.Addr()
}

// SetServing 切换健康状态
func (h *HealthServer) SetServing(serving bool) {
	status := healthpb.HealthCheckResponse_NOT_SERVING
	if serving {
		status = healthpb.HealthCheckResponse_SERVING
	}
	h.health.SetServingStatus("", status)
	h.health.SetServingStatus(HealthService, status)
}

// Start serves until Stop is called.
func (h *HealthServer) Start() {
	logger.Log.Infof("gRPC health server listening on %s", h.listener.Addr())
	if err := h.grpc.Serve(h.listener); err != nil && !errors.Is(err, grpc.ErrServerStopped) {
		logger.Log.Errorf("gRPC health server: %v", err)
	}
}

// Stop reports NOT_SERVING to watchers and shuts the server down.
func (h *HealthServer) Stop() {
	h.health.Shutdown()
	h.grpc.GracefulStop()
}
