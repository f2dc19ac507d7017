package ui

import (
	"bytes"
	"log"
	"net/http"
	"path"

	"github.com/gin-gonic/gin"

	"stringcalc/adapters/excel"
	"stringcalc/domain/core"
	"stringcalc/internal/errors"
)

func (s *Server) handleHome(c *gin.Context) {
	rows := 0
	if summary, err := s.page.Summary(c.Request.Context()); err == nil {
		rows = summary.Rows
	}
	s.renderTemplate(c, "home.html", gin.H{
		"Title": "String Calculator",
		"Body":  s.homeBody,
		"Rows":  rows,
	})
}

func (s *Server) handleHealth(c *gin.Context) {
	status := gin.H{"status": "ok"}
	if s.opts.Peer != nil {
		status["peer_connected"] = s.opts.Peer.Connected()
	}
	if s.hub != nil {
		status["viewers"] = s.hub.ClientCount()
	}
	c.JSON(http.StatusOK, status)
}

// handleCalculator renders the live page, form values included
func (s *Server) handleCalculator(c *gin.Context) {
	var buf bytes.Buffer
	if err := s.page.Render(c.Request.Context(), &buf); err != nil {
		log.Printf("[Calculator] render failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.Data(http.StatusOK, "text/html; charset=utf-8", buf.Bytes())
}

// handleFields applies form edits; accepts a JSON object or a url-encoded form
func (s *Server) handleFields(c *gin.Context) {
	fields := make(map[string]string)
	if c.ContentType() == gin.MIMEJSON {
		if err := c.ShouldBindJSON(&fields); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": errors.InvalidInput(err.Error()).Error()})
			return
		}
	} else {
		if err := c.Request.ParseForm(); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": errors.InvalidInput(err.Error()).Error()})
			return
		}
		for id := range c.Request.PostForm {
			fields[id] = c.Request.PostForm.Get(id)
		}
	}

	missing, err := s.page.SetFields(c.Request.Context(), fields)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if missing == nil {
		missing = []string{}
	}
	c.JSON(http.StatusOK, gin.H{"applied": len(fields) - len(missing), "missing": missing})
}

// handleUpdate collects the page and sends it to the peer
func (s *Server) handleUpdate(c *gin.Context) {
	res, err := s.page.UpdateInstrument(c.Request.Context())
	if err != nil {
		switch errors.GetCode(err) {
		case errors.CodeMissingElement:
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error(), "missing": res.Missing})
		case errors.CodeTransportError:
			c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		}
		return
	}
	c.JSON(http.StatusOK, gin.H{"info": res.Info, "rows": len(res.Table)})
}

func (s *Server) handleTable(c *gin.Context) {
	ctx := c.Request.Context()
	snapshot, err := s.page.Snapshot(ctx)
	if err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}
	summary, err := s.page.Summary(ctx)
	if err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"rows": snapshot, "summary": summary})
}

func (s *Server) handleExport(c *gin.Context) {
	name := path.Base(c.Request.URL.Path)
	exporter, err := excel.ExporterFor(name)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}

	var buf bytes.Buffer
	if err := s.page.Export(c.Request.Context(), exporter, &buf); err != nil {
		log.Printf("[Export] %s failed: %v", name, err)
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}
	c.Header("Content-Disposition", `attachment; filename="string_table`+path.Ext(name)+`"`)
	c.Data(http.StatusOK, exporter.ContentType(), buf.Bytes())
}

func statusFor(err error) int {
	if core.IsMissingElementError(err) {
		return http.StatusNotFound
	}
	return http.StatusInternalServerError
}
