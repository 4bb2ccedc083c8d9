// Package portal serves the configuration form in access-point mode.
package portal

import (
	"context"
	"errors"
	"html/template"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"

	"wledremote/services/config"
	"wledremote/types"
)

// DefaultAddr is where the portal listens on the access point.
const DefaultAddr = ":80"

// RebootDelay lets the confirmation page reach the browser first.
const RebootDelay = time.Second

const maxFormBytes = 4 << 10

var formTmpl = template.Must(template.New("form").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="UTF-8">
<meta name="viewport" content="width=device-width, initial-scale=1.0">
<title>WLED remote setup</title>
<style>
body{font-family:Arial,sans-serif;background:#f0f0f5;margin:0;padding:20px;display:flex;justify-content:center}
.box{background:#fff;padding:20px;border-radius:12px;box-shadow:0 4px 12px rgba(0,0,0,.1);width:100%;max-width:400px}
label{font-weight:bold;display:block;margin-top:12px}
input{width:calc(100% - 20px);padding:12px;margin:8px 0;border:1px solid #ccc;border-radius:6px;font-size:16px}
input[type=submit]{background:#007BFF;color:#fff;border:none;cursor:pointer}
</style>
</head>
<body>
<div class="box">
<form action="/configure" method="post">
<label for="ip">WLED IP:</label>
<input type="text" id="ip" name="ip" value="{{.IP}}">
<label for="port">Port:</label>
<input type="number" id="port" name="port" value="{{.Port}}">
<label for="ssid">SSID:</label>
<input type="text" id="ssid" name="ssid" value="{{.SSID}}">
<label for="pw">Password:</label>
<input type="password" id="pw" name="pw" value="{{.Password}}">
<input type="submit" value="Save">
</form>
</div>
</body>
</html>
`))

const savedPage = `<html><body>Configuration saved. Rebooting...</body></html>`

// Rebooter restarts the device. It does not return on real hardware.
type Rebooter interface {
	Reboot() error
}

type Portal struct {
	path   string
	reboot Rebooter
	delay  time.Duration
	log    *slog.Logger

	mu  sync.Mutex
	cfg types.Config
}

// New serves cfg and persists submissions to path.
func New(path string, cfg types.Config, reboot Rebooter, log *slog.Logger) *Portal {
	if log == nil {
		log = slog.Default()
	}
	return &Portal{path: path, cfg: cfg, reboot: reboot, delay: RebootDelay, log: log.With("svc", "portal")}
}

// Config returns the configuration currently served.
func (p *Portal) Config() types.Config {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.cfg
}

func (p *Portal) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /configure", p.handleConfigure)
	mux.HandleFunc("/", p.handleForm)
	return mux
}

func (p *Portal) handleForm(w http.ResponseWriter, r *http.Request) {
	p.log.Debug("client", "from", r.RemoteAddr, "path", r.URL.Path)
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := formTmpl.Execute(w, p.Config()); err != nil {
		p.log.Warn("render form", "err", err)
	}
}

func (p *Portal) handleConfigure(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxFormBytes)
	if err := r.ParseForm(); err != nil {
		// Keep whatever parsed; missing fields keep their old values.
		p.log.Warn("form parse", "err", err)
	}

	p.mu.Lock()
	p.cfg = config.Merge(p.cfg, r.PostForm)
	cfg := p.cfg
	p.mu.Unlock()

	if err := config.Save(p.path, cfg); err != nil {
		p.log.Error("save config", "path", p.path, "err", err)
	} else {
		p.log.Info("config saved", "path", p.path, "ip", cfg.IP, "port", cfg.Port, "ssid", cfg.SSID)
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(savedPage))
	if f, ok := w.(http.Flusher); ok {
		f.Flush()
	}

	time.AfterFunc(p.delay, func() {
		p.log.Info("rebooting")
		if err := p.reboot.Reboot(); err != nil {
			p.log.Error("reboot", "err", err)
		}
	})
}

// Serve blocks accepting connections on ln until ctx is done.
func (p *Portal) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           p.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		<-ctx.Done()
		sctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		_ = srv.Shutdown(sctx)
	}()
	p.log.Info("serving", "addr", ln.Addr().String())
	if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return ctx.Err()
}
