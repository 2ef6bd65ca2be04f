package handler // declare the package name; contains HTTP handlers

import (
	"net/http" // net/http provides status codes

	"github.com/labstack/echo/v4" // echo is the web framework used for this project
)

// formPage is served verbatim on GET /.  The form posts a single field named
// "host" to /ping.
const formPage = `<!DOCTYPE html>
<html>
<head><meta charset="utf-8"><title>Ping a Website</title></head>
<body>
    <h1>Ping a Website</h1>
    <form method="POST" action="/ping">
        <label for="host">Enter a hostname or IP address:</label>
        <input type="text" id="host" name="host" placeholder="e.g., google.com">
        <button type="submit">Ping</button>
    </form>
</body>
</html>
`

// RenderForm returns the static form document.
func RenderForm() string { return formPage }

// Form serves the form.  Any query or body is ignored.
func Form(c echo.Context) error {
	return c.HTML(http.StatusOK, RenderForm())
}
