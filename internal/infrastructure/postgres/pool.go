package postgres

import (
	"context"
	"fmt"
	"net"
	"net/url"
	"time"

	pgxdecimal "github.com/jackc/pgx-shopspring-decimal"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jhoicas/stock-ledger/pkg/config"
)

// NewPool crea el pool de conexiones del libro.
// lock_timeout se fija por sesión: una espera de fila más larga falla con 55P03 y el
// llamador recibe un conflicto reintentable en lugar de quedar bloqueado.
func NewPool(ctx context.Context, cfg config.DBConfig) (*pgxpool.Pool, error) {
	dsn := cfg.ConnectionString()
	if cfg.ForceIPv4 {
		dsn = dsnWithIPv4(dsn)
	}

	poolConfig, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse DSN: %w", err)
	}

	if cfg.LockTimeout > 0 {
		poolConfig.ConnConfig.RuntimeParams["lock_timeout"] = fmt.Sprintf("%d", cfg.LockTimeout.Milliseconds())
	}
	if cfg.StatementTimeout > 0 {
		poolConfig.ConnConfig.RuntimeParams["statement_timeout"] = fmt.Sprintf("%d", cfg.StatementTimeout.Milliseconds())
	}

	poolConfig.MaxConns = int32(cfg.MaxConns)
	if poolConfig.MaxConns <= 0 {
		poolConfig.MaxConns = 25
	}
	poolConfig.MinConns = 2
	poolConfig.MaxConnLifetime = time.Hour
	poolConfig.MaxConnIdleTime = 30 * time.Minute
	poolConfig.HealthCheckPeriod = time.Minute

	// NUMERIC -> shopspring/decimal para los precios.
	poolConfig.AfterConnect = func(ctx context.Context, conn *pgx.Conn) error {
		pgxdecimal.Register(conn.TypeMap())
		return nil
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("crear pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping DB: %w", err)
	}
	return pool, nil
}

// dsnWithIPv4 reemplaza el host de un DSN en formato URL por su primera IPv4.
// Redes de contenedores sin IPv6 no alcanzan hosts que resuelven primero a AAAA.
func dsnWithIPv4(dsn string) string {
	u, err := url.Parse(dsn)
	if err != nil || u.Host == "" {
		return dsn
	}
	port := u.Port()
	if port == "" {
		port = "5432"
	}
	ipv4, err := lookupIPv4(u.Hostname())
	if err != nil {
		return dsn
	}
	u.Host = net.JoinHostPort(ipv4, port)
	return u.String()
}

func lookupIPv4(host string) (string, error) {
	if ip := net.ParseIP(host); ip != nil {
		if ip.To4() != nil {
			return host, nil
		}
		return "", fmt.Errorf("%s es IPv6", host)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	ips, err := net.DefaultResolver.LookupIP(ctx, "ip4", host)
	if err != nil {
		return "", err
	}
	if len(ips) == 0 {
		return "", fmt.Errorf("sin IPv4 para %s", host)
	}
	return ips[0].String(), nil
}
