package host

import (
	"context"
	"fmt"
	"html"
	"io"

	"github.com/a-h/templ"
)

const datastarScript = "https://cdn.jsdelivr.net/gh/starfederation/datastar@1.0.0/bundles/datastar.js"

// RootID is the id of the element the view is rendered into. SSE patches morph it.
const RootID = "beepboop-root"

// page wraps body in a document that subscribes to the stream on load.
func page(title string, body templ.Component) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		if _, err := fmt.Fprintf(w, `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>%s</title>
<script type="module" src="%s"></script>
</head>
<body data-init="@get('/stream')">
<div id="%s">`, html.EscapeString(title), datastarScript, RootID); err != nil {
			return err
		}
		if body != nil {
			if err := body.Render(ctx, w); err != nil {
				return err
			}
		}
		_, err := io.WriteString(w, "</div>\n</body>\n</html>\n")
		return err
	})
}
