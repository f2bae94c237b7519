package apihttp

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"syscall"
	"time"
)

const (
	maxProxiedMediaBytes = int64(20 * 1024 * 1024)
	maxMediaRedirects    = 5
	mediaSniffBytes      = 512
)

var errBlockedHost = errors.New("blocked url host")

// internalHosts are service names inside the deployment network.
var internalHosts = map[string]struct{}{
	"localhost":      {},
	"mongo":          {},
	"redis":          {},
	"catalog":        {},
	"otel-collector": {},
}

// mediaError carries the status and code a failed proxy request answers with.
type mediaError struct {
	status  int
	code    string
	message string
}

func (e *mediaError) Error() string { return e.message }

func badMedia(message string) *mediaError {
	return &mediaError{status: http.StatusBadRequest, code: "invalid_request", message: message}
}

func upstreamMedia(message string) *mediaError {
	return &mediaError{status: http.StatusBadGateway, code: "upstream_error", message: message}
}

// handleMediaProxy relays exercise images and gifs from catalogs that refuse
// hotlinking. Only images from public hosts are relayed.
func (s *Server) handleMediaProxy(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/exercises/media" {
		http.NotFound(w, r)
		return
	}
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	target, mErr := s.mediaTarget(r.URL.Query().Get("url"))
	if mErr != nil {
		writeError(w, mErr.status, mErr.code, mErr.message)
		return
	}

	resp, mErr := s.fetchMedia(r.Context(), target)
	if mErr != nil {
		writeError(w, mErr.status, mErr.code, mErr.message)
		return
	}
	defer resp.Body.Close()

	body := io.LimitReader(resp.Body, maxProxiedMediaBytes)
	head := make([]byte, mediaSniffBytes)
	n, err := io.ReadFull(body, head)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		writeError(w, http.StatusBadGateway, "upstream_error", "failed to read media")
		return
	}
	head = head[:n]

	contentType := strings.TrimSpace(resp.Header.Get("Content-Type"))
	if contentType == "" {
		contentType = http.DetectContentType(head)
	}
	if !strings.HasPrefix(strings.ToLower(contentType), "image/") {
		writeError(w, http.StatusBadGateway, "upstream_error", "not an image")
		return
	}

	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Cache-Control", "public, max-age=86400")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(head)
	_, _ = io.Copy(w, body)
}

func (s *Server) mediaTarget(raw string) (*url.URL, *mediaError) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, badMedia("missing url")
	}
	target, err := url.Parse(raw)
	if err != nil {
		return nil, badMedia("invalid url")
	}
	if err := s.checkMediaURL(target); err != nil {
		return nil, badMedia(err.Error())
	}
	return target, nil
}

func (s *Server) fetchMedia(ctx context.Context, target *url.URL) (*http.Response, *mediaError) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target.String(), nil)
	if err != nil {
		return nil, badMedia("invalid url")
	}
	req.Header.Set("User-Agent", "fitstream-catalog/1.0")
	req.Header.Set("Accept", "image/avif,image/webp,image/gif,image/*;q=0.8")

	resp, err := s.mediaClient().Do(req)
	if err != nil {
		if errors.Is(err, errBlockedHost) {
			return nil, badMedia(errBlockedHost.Error())
		}
		return nil, upstreamMedia("failed to fetch media")
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		resp.Body.Close()
		return nil, upstreamMedia(fmt.Sprintf("upstream returned HTTP %d", resp.StatusCode))
	}
	if resp.ContentLength > maxProxiedMediaBytes {
		resp.Body.Close()
		return nil, &mediaError{status: http.StatusRequestEntityTooLarge, code: "invalid_request", message: "media too large"}
	}
	return resp, nil
}

// mediaClient checks every redirect hop against the same rules and refuses
// to connect to non-public addresses, whatever the name resolved to.
func (s *Server) mediaClient() *http.Client {
	dialer := &net.Dialer{
		Timeout:   8 * time.Second,
		KeepAlive: 30 * time.Second,
		Control:   refusePrivateDial,
	}
	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.Proxy = nil
	transport.DialContext = dialer.DialContext

	return &http.Client{
		Timeout:   12 * time.Second,
		Transport: transport,
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			if len(via) >= maxMediaRedirects {
				return fmt.Errorf("stopped after %d redirects", maxMediaRedirects)
			}
			return s.checkMediaURL(req.URL)
		},
	}
}

func refusePrivateDial(_, address string, _ syscall.RawConn) error {
	host, _, err := net.SplitHostPort(address)
	if err != nil {
		return err
	}
	if isBlockedIP(net.ParseIP(host)) {
		return errBlockedHost
	}
	return nil
}

// checkMediaURL validates what can be decided from the URL alone. Resolved
// addresses are checked at dial time.
func (s *Server) checkMediaURL(u *url.URL) error {
	if u == nil {
		return errors.New("invalid url")
	}
	switch strings.ToLower(u.Scheme) {
	case "http", "https":
	default:
		return errors.New("unsupported url scheme")
	}
	host := strings.ToLower(strings.TrimSpace(u.Hostname()))
	if host == "" {
		return errors.New("invalid url host")
	}
	if !s.mediaHostAllowed(host) {
		return errors.New("media host not allowed")
	}
	if _, internal := internalHosts[host]; internal {
		return errBlockedHost
	}
	for _, suffix := range []string{".local", ".localhost", ".internal"} {
		if strings.HasSuffix(host, suffix) {
			return errBlockedHost
		}
	}
	if ip := net.ParseIP(host); ip != nil && isBlockedIP(ip) {
		return errBlockedHost
	}
	return nil
}

func (s *Server) mediaHostAllowed(host string) bool {
	if len(s.mediaHosts) == 0 {
		return true
	}
	for _, allowed := range s.mediaHosts {
		if host == allowed || strings.HasSuffix(host, "."+allowed) {
			return true
		}
	}
	return false
}

func isBlockedIP(ip net.IP) bool {
	if ip == nil {
		return true
	}
	return ip.IsLoopback() || ip.IsPrivate() || ip.IsLinkLocalUnicast() ||
		ip.IsLinkLocalMulticast() || ip.IsMulticast() || ip.IsUnspecified()
}
