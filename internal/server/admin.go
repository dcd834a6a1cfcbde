package server

import (
	"context"
	"crypto/subtle"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"store-feedback/internal/excel"
	"store-feedback/internal/jobs"
	"store-feedback/internal/storage"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"
)

type loginRequest struct {
	Username string `json:"username" form:"username"`
	Password string `json:"password" form:"password"`
}

func (s *Server) checkCredentials(username, password string) bool {
	if s.cfg.AdminPasswordHash == "" {
		return false
	}
	userOK := subtle.ConstantTimeCompare([]byte(username), []byte(s.cfg.AdminUser)) == 1
	passOK := bcrypt.CompareHashAndPassword([]byte(s.cfg.AdminPasswordHash), []byte(password)) == nil
	return userOK && passOK
}

func (s *Server) handleLogin(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBind(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "username and password are required"})
		return
	}
	if !s.checkCredentials(req.Username, req.Password) {
		s.logger.Warn("admin login rejected", "user", req.Username, "ip", c.ClientIP())
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid username or password"})
		return
	}

	session := sessions.Default(c)
	session.Set(sessionAdminKey, req.Username)
	if err := session.Save(); err != nil {
		s.logger.Error("save admin session", "err", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

func (s *Server) handleLogout(c *gin.Context) {
	session := sessions.Default(c)
	session.Delete(sessionAdminKey)
	_ = session.Save()
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

// requireArchive writes 503 and returns false when no database backend is configured.
func (s *Server) requireArchive(c *gin.Context) bool {
	if s.archive == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Database backend is not enabled"})
		return false
	}
	return true
}

func (s *Server) handleListReviews(c *gin.Context) {
	if !s.requireArchive(c) {
		return
	}
	filter := storage.ReviewFilter{StoreID: c.Query("store"), Limit: 100}
	if v := c.Query("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be a positive integer"})
			return
		}
		filter.Limit = n
	}
	if v := c.Query("since"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "since must be an RFC 3339 timestamp"})
			return
		}
		filter.Since = t
	}

	list, err := s.archive.ListReviews(c.Request.Context(), filter)
	if err != nil {
		s.logger.Error("list reviews", "err", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"reviews": list})
}

func (s *Server) handleStats(c *gin.Context) {
	if !s.requireArchive(c) {
		return
	}
	counts, err := s.archive.CountByStore(c.Request.Context())
	if err != nil {
		s.logger.Error("count reviews", "err", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"stores": counts})
}

func (s *Server) handleStartExport(c *gin.Context) {
	if !s.requireArchive(c) {
		return
	}
	filter := storage.ReviewFilter{StoreID: c.Query("store")}
	job := s.jobs.Run(func(j *jobs.Job) {
		s.exportReviews(j, filter)
	})
	c.JSON(http.StatusAccepted, gin.H{"ok": true, "jobId": job.ID})
}

func (s *Server) exportReviews(job *jobs.Job, filter storage.ReviewFilter) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	job.Log("Loading reviews...")
	list, err := s.archive.ListReviews(ctx, filter)
	if err != nil {
		job.Fail(fmt.Sprintf("Could not load reviews: %v", err))
		return
	}
	job.SetProgress(1, 2, fmt.Sprintf("%d reviews loaded.", len(list)))

	filename := fmt.Sprintf("reviews_%s.xlsx", job.ID)
	output := filepath.Join(s.cfg.ExportDir, filename)
	job.Log("Writing spreadsheet...")
	if err := excel.WriteReviews(output, list, excel.ReviewsSheet); err != nil {
		job.Fail(fmt.Sprintf("Could not write spreadsheet: %v", err))
		return
	}

	job.Finish(jobs.Result{
		Kind:     "reviews",
		Rows:     len(list),
		Sheet:    excel.ReviewsSheet,
		Output:   output,
		Filename: filename,
	}, "Export finished.")
	s.logger.Info("review export finished", "job", job.ID, "rows", len(list))
}

func (s *Server) handleJobStatus(c *gin.Context) {
	job := s.jobs.Get(c.Param("id"))
	if job == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Job not found"})
		return
	}
	c.JSON(http.StatusOK, job.Snapshot())
}

func (s *Server) handleDownload(c *gin.Context) {
	filename := filepath.Base(c.Param("filename"))
	target := filepath.Join(s.cfg.ExportDir, filename)
	if _, err := os.Stat(target); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "File not found"})
		return
	}
	c.FileAttachment(target, filename)
}
