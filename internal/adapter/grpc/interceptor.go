package grpc

import (
	"context"
	"crypto/subtle"
	"fmt"
	"net"
	"strings"

	"github.com/google/uuid"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/peer"
	"google.golang.org/grpc/status"

	wealthtrackv1 "github.com/simaogato/wealthtrack-backend/internal/adapter/grpc/wealthtrack/v1"
	"github.com/simaogato/wealthtrack-backend/internal/domain"
)

const bearerPrefix = "Bearer "

// TokenVerifier resolves a bearer token to a user id
type TokenVerifier interface {
	Verify(token string) (uuid.UUID, error)
}

// AuthConfig configures AuthInterceptor
type AuthConfig struct {
	// APIToken authenticates trusted callers; empty disables it
	APIToken string
	Tokens   TokenVerifier
	// TrustedNetworks lets callers without credentials in as trusted
	TrustedNetworks []*net.IPNet
	// TrustedUserID is the user trusted callers act as
	TrustedUserID uuid.UUID
}

// PublicMethods need no credentials
var PublicMethods = map[string]bool{
	wealthtrackv1.FullMethod("Register"): true,
	wealthtrackv1.FullMethod("Login"):    true,
}

// ParseNetworks parses CIDR notations such as "10.0.0.0/8"
func ParseNetworks(cidrs []string) ([]*net.IPNet, error) {
	networks := make([]*net.IPNet, 0, len(cidrs))
	for _, cidr := range cidrs {
		_, network, err := net.ParseCIDR(strings.TrimSpace(cidr))
		if err != nil {
			return nil, fmt.Errorf("invalid trusted network %q: %w", cidr, err)
		}
		networks = append(networks, network)
	}
	return networks, nil
}

// AuthInterceptor returns a gRPC unary server interceptor that resolves the
// caller into a domain.Principal stored in the handler's context.
//   - "authorization: Bearer <jwt>" acts as the token's user
//   - "authorization: <api token>" is trusted and acts as TrustedUserID
//   - no authorization from a trusted network is treated like the api token
//
// Anything else returns status.Unauthenticated before the handler runs.
func AuthInterceptor(cfg AuthConfig) grpc.UnaryServerInterceptor {
	return func(
		ctx context.Context,
		req interface{},
		info *grpc.UnaryServerInfo,
		handler grpc.UnaryHandler,
	) (interface{}, error) {
		if PublicMethods[info.FullMethod] {
			return handler(ctx, req)
		}

		principal, err := cfg.authenticate(ctx)
		if err != nil {
			return nil, err
		}
		return handler(domain.WithPrincipal(ctx, principal), req)
	}
}

func (cfg AuthConfig) authenticate(ctx context.Context) (domain.Principal, error) {
	var authHeaders []string
	if md, ok := metadata.FromIncomingContext(ctx); ok {
		authHeaders = md.Get("authorization")
	}

	if len(authHeaders) == 0 {
		if cfg.fromTrustedNetwork(ctx) {
			return domain.Principal{UserID: cfg.TrustedUserID, Trusted: true}, nil
		}
		return domain.Principal{}, status.Error(codes.Unauthenticated, "missing authorization header")
	}

	credential := strings.TrimSpace(authHeaders[0])
	if token, ok := strings.CutPrefix(credential, bearerPrefix); ok && cfg.Tokens != nil {
		userID, err := cfg.Tokens.Verify(strings.TrimSpace(token))
		if err != nil {
			return domain.Principal{}, status.Error(codes.Unauthenticated, "invalid token")
		}
		return domain.Principal{UserID: userID}, nil
	}

	if cfg.APIToken != "" && subtle.ConstantTimeCompare([]byte(credential), []byte(cfg.APIToken)) == 1 {
		return domain.Principal{UserID: cfg.TrustedUserID, Trusted: true}, nil
	}

	return domain.Principal{}, status.Error(codes.Unauthenticated, "invalid token")
}

func (cfg AuthConfig) fromTrustedNetwork(ctx context.Context) bool {
	p, ok := peer.FromContext(ctx)
	if !ok || p.Addr == nil {
		return false
	}

	var ip net.IP
	switch addr := p.Addr.(type) {
	case *net.TCPAddr:
		ip = addr.IP
	default:
		host, _, err := net.SplitHostPort(addr.String())
		if err != nil {
			return false
		}
		ip = net.ParseIP(host)
	}
	if ip == nil {
		return false
	}

	for _, network := range cfg.TrustedNetworks {
		if network.Contains(ip) {
			return true
		}
	}
	return false
}
