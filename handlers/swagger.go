package handlers

import (
	"embed"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
)

//go:embed openapi/*.json
var openapiDocs embed.FS

// OpenAPI returns the embedded OpenAPI document of a service ("auth" or "reservations").
func OpenAPI(service string) ([]byte, error) {
	return openapiDocs.ReadFile("openapi/" + service + ".json")
}

// RegisterSwagger serves a Swagger UI page at /swagger/index.html and the service's
// OpenAPI document at /swagger/doc.json.
func RegisterSwagger(r gin.IRoutes, service string) error {
	doc, err := OpenAPI(service)
	if err != nil {
		return fmt.Errorf("openapi document for %s: %w", service, err)
	}
	page := fmt.Sprintf(swaggerHTML, service)

	r.GET("/swagger/index.html", func(c *gin.Context) {
		c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(page))
	})
	r.GET("/swagger/doc.json", func(c *gin.Context) {
		c.Data(http.StatusOK, "application/json", doc)
	})
	return nil
}

const swaggerHTML = `<!doctype html>
<html>
  <head>
    <meta charset="utf-8" />
    <title>aircnc-%s · Swagger</title>
    <link rel="stylesheet" href="https://unpkg.com/swagger-ui-dist@5/swagger-ui.css" />
  </head>
  <body>
    <div id="swagger-ui"></div>
    <script src="https://unpkg.com/swagger-ui-dist@5/swagger-ui-bundle.js"></script>
    <script>
      window.ui = SwaggerUIBundle({
        url: '/swagger/doc.json',
        dom_id: '#swagger-ui',
      })
    </script>
  </body>
</html>`
