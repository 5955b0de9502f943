package app

import (
	"context"
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/tls"
	"crypto/x509"
	"crypto/x509/pkix"
	"errors"
	"fmt"
	"math/big"
	"net"
	"net/http"
	"strconv"
	"time"

	"go.uber.org/zap"
)

// certificateLifetime is how long the self-signed certificate stays valid.
const certificateLifetime = 90 * 24 * time.Hour

// selfSignedCertificate issues an ephemeral certificate for domain so HTTPS
// works before a real one is provisioned. Nothing is written to disk.
func selfSignedCertificate(domain string, now time.Time) (tls.Certificate, error) {
	priv, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	if err != nil {
		return tls.Certificate{}, err
	}
	serial, err := rand.Int(rand.Reader, new(big.Int).Lsh(big.NewInt(1), 128))
	if err != nil {
		return tls.Certificate{}, err
	}

	template := x509.Certificate{
		SerialNumber: serial,
		Subject:      pkix.Name{CommonName: domain},
		NotBefore:    now.Add(-time.Hour),
		NotAfter:     now.Add(certificateLifetime),
		DNSNames:     []string{domain},
		KeyUsage:     x509.KeyUsageKeyEncipherment | x509.KeyUsageDigitalSignature,
		ExtKeyUsage:  []x509.ExtKeyUsage{x509.ExtKeyUsageServerAuth},
	}
	der, err := x509.CreateCertificate(rand.Reader, &template, &template, &priv.PublicKey, priv)
	if err != nil {
		return tls.Certificate{}, err
	}
	leaf, err := x509.ParseCertificate(der)
	if err != nil {
		return tls.Certificate{}, err
	}
	return tls.Certificate{Certificate: [][]byte{der}, PrivateKey: priv, Leaf: leaf}, nil
}

// tlsListener wraps ln so it terminates TLS for the configured domain.
func tlsListener(ln net.Listener, cfg TLSConfig) (net.Listener, error) {
	cert, err := selfSignedCertificate(cfg.Domain, time.Now())
	if err != nil {
		return nil, fmt.Errorf("unable to generate certificate: %w", err)
	}
	return tls.NewListener(ln, &tls.Config{
		Certificates: []tls.Certificate{cert},
		MinVersion:   tls.VersionTLS12,
	}), nil
}

// redirectHandler sends plain HTTP clients to the HTTPS address of domain.
func redirectHandler(domain string, httpsPort int) http.Handler {
	host := domain
	if httpsPort != 443 {
		host = net.JoinHostPort(domain, strconv.Itoa(httpsPort))
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "https://"+host+r.URL.RequestURI(), http.StatusPermanentRedirect)
	})
}

// runRedirect serves the HTTP to HTTPS redirect until ctx ends.
func runRedirect(ctx context.Context, cfg *Config, logger *zap.Logger) {
	addr := ":" + strconv.Itoa(cfg.TLS.RedirectPort)
	server := &http.Server{
		Addr:              addr,
		Handler:           redirectHandler(cfg.TLS.Domain, cfg.Server.Port),
		ReadHeaderTimeout: cfg.Server.ReadTimeout,
	}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		server.Shutdown(shutdownCtx)
	}()

	logger.Info("redirecting plain HTTP to HTTPS", zap.String("addr", addr), zap.String("domain", cfg.TLS.Domain))
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("redirect server stopped", zap.Error(err))
	}
}
