package ui

import (
	"bytes"
	"fmt"
	"html/template"
	"log"

	"github.com/gin-gonic/gin"
	"github.com/gomarkdown/markdown"
	mdhtml "github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"
)

// loadTemplates parses the page layouts and renders the markdown home body
func (s *Server) loadTemplates() error {
	tmpl, err := template.New("").ParseFS(embeddedFiles, "templates/home.html")
	if err != nil {
		return fmt.Errorf("failed to parse templates: %w", err)
	}
	s.templates = tmpl

	md, err := embeddedFiles.ReadFile("templates/home.md")
	if err != nil {
		return fmt.Errorf("failed to read home page: %w", err)
	}
	s.homeBody = renderMarkdown(md)
	log.Printf("[TemplateInit] templates: %s", tmpl.DefinedTemplates())
	return nil
}

func renderMarkdown(md []byte) template.HTML {
	p := parser.NewWithExtensions(parser.CommonExtensions | parser.AutoHeadingIDs)
	r := mdhtml.NewRenderer(mdhtml.RendererOptions{Flags: mdhtml.CommonFlags})
	return template.HTML(markdown.ToHTML(md, p, r))
}

// renderTemplate executes a template with the given data
func (s *Server) renderTemplate(c *gin.Context, templateName string, data interface{}) {
	// Render to a buffer first so errors never produce half a page
	var buf bytes.Buffer
	if err := s.templates.ExecuteTemplate(&buf, templateName, data); err != nil {
		log.Printf("Template error for %s: %v", templateName, err)
		c.AbortWithStatusJSON(500, gin.H{"error": "Template rendering failed", "details": err.Error()})
		return
	}

	c.Header("Content-Type", "text/html; charset=utf-8")
	c.Writer.WriteHeader(200)
	if _, err := buf.WriteTo(c.Writer); err != nil {
		log.Printf("Error writing template response: %v", err)
	}
}
