package webd

import (
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	ghandlers "github.com/gorilla/handlers"
	"github.com/trailimage/trailmap/metrics"
)

// requestToken is the Authorization header, bearer prefix optional,
// or else the api_token query param.
func requestToken(r *http.Request) string {
	token := strings.TrimSpace(r.Header.Get("Authorization"))
	token = strings.TrimPrefix(token, "Bearer ")
	if token == "" {
		// eg. localhost:3000/posts/kaniksu-loop/track?api_token=asdfasdfb
		token = r.URL.Query().Get("api_token")
	}
	return token
}

// tokenAuthenticationMiddleware returns 403 Forbidden unless the request
// carries the daemon's token. If no token is set, it allows all requests.
func (s *WebDaemon) tokenAuthenticationMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.token == "" {
			s.logger.Warn("No token set, allowing all requests")
			next.ServeHTTP(w, r)
			return
		}
		if requestToken(r) != s.token {
			s.logger.Warn("Invalid token",
				"method", r.Method, "url", r.URL,
				"remote", r.RemoteAddr, "user-agent", r.UserAgent())
			http.Error(w, "Forbidden", http.StatusForbidden)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func permissiveCorsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Add("Access-Control-Allow-Headers", "Origin, X-Requested-With, Content-Type, Accept, Authorization, If-None-Match")
		w.Header().Add("Access-Control-Expose-Headers", "ETag")
		next.ServeHTTP(w, r)
	})
}

func contentTypeMiddlewareFunc(contentType string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", contentType)
			next.ServeHTTP(w, r)
		})
	}
}

func requestsMeterMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		metrics.RequestsMeter.Mark(1)
		next.ServeHTTP(w, r)
	})
}

// buildCommonLogLine builds a log entry for req in Apache Common Log Format.
// Forwarded-for hops are appended to the remote host.
func buildCommonLogLine(req *http.Request, u url.URL, ts time.Time, status int, size int) []byte {
	username := "-"
	if u.User != nil {
		if name := u.User.Username(); name != "" {
			username = name
		}
	}

	host, _, err := net.SplitHostPort(req.RemoteAddr)
	if err != nil {
		host = req.RemoteAddr
	}
	for _, v := range req.Header.Values("X-Forwarded-For") {
		host += "->" + v
	}

	uri := req.RequestURI
	if req.ProtoMajor == 2 && req.Method == http.MethodConnect {
		uri = req.Host
	}
	if uri == "" {
		uri = u.RequestURI()
	}
	// Quote, then drop the surrounding quotes; the line supplies its own.
	quoted := strconv.Quote(uri)
	quoted = quoted[1 : len(quoted)-1]

	buf := make([]byte, 0, len(host)+len(username)+len(req.Method)+len(quoted)+len(req.Proto)+64)
	buf = append(buf, host...)
	buf = append(buf, " - "...)
	buf = append(buf, username...)
	buf = append(buf, " ["...)
	buf = ts.AppendFormat(buf, "02/Jan/2006:15:04:05 -0700")
	buf = append(buf, `] "`...)
	buf = append(buf, req.Method...)
	buf = append(buf, ' ')
	buf = append(buf, quoted...)
	buf = append(buf, ' ')
	buf = append(buf, req.Proto...)
	buf = append(buf, `" `...)
	buf = strconv.AppendInt(buf, int64(status), 10)
	buf = append(buf, ' ')
	buf = strconv.AppendInt(buf, int64(size), 10)
	return buf
}

func writeLog(writer io.Writer, params ghandlers.LogFormatterParams) {
	buf := buildCommonLogLine(params.Request, params.URL, params.TimeStamp, params.StatusCode, params.Size)
	buf = append(buf, '\n')
	if _, err := writer.Write(buf); err != nil {
		slog.Warn("Failed to write access log", "error", err)
	}
}

func loggingMiddleware(next http.Handler) http.Handler {
	return ghandlers.CustomLoggingHandler(os.Stdout, next, writeLog)
}
