package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// Server http server config struct
type Server struct {
	Host            string
	Port            int
	SessionCookie   string
	SecureCookie    bool
	ShutdownTimeout time.Duration
}

// Addr returns the listen address
func (s *Server) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

func getServerConfig(v *viper.Viper) *Server {
	return &Server{
		Host:            getStringOrDefault(v, "server.host", "127.0.0.1"),
		Port:            getIntOrDefault(v, "server.port", 8080),
		SessionCookie:   getStringOrDefault(v, "server.session_cookie", "sid"),
		SecureCookie:    getBoolOrDefault(v, "server.secure_cookie", false),
		ShutdownTimeout: getDurationOrDefault(v, "server.shutdown_timeout", 10*time.Second),
	}
}
