package http

import (
	"io"
	"log/slog"
	"net/http"
)

const defaultNotFoundHTML = `<html>
<head><title>404 Not Found</title></head>
<body>
<center><h1>404 Not Found</h1></center>
<hr><center>photozip</center>
</body>
</html>`

const archiveNotFoundHTML = `<html>
<head><meta charset="utf-8"><title>Архив не найден</title></head>
<body>
<p>Архив не существует или был удален</p>
</body>
</html>`

const defaultIndexHTML = `<html>
<head><meta charset="utf-8"><title>photozip</title></head>
<body>
<h1>photozip</h1>
<p>Use the link you were given to download an archive of photos.</p>
</body>
</html>`

func writeDefaultNotFound(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusNotFound)
	_, _ = io.WriteString(w, defaultNotFoundHTML)
}

func writeHTML(w http.ResponseWriter, code int, page []byte) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(code)
	if _, err := w.Write(page); err != nil {
		slog.Debug("failed to write page", "err", err)
	}
}
