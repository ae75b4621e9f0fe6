package demoapi

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/hk1947/apicontract/internal/datagen"
	"github.com/hk1947/apicontract/internal/model"
)

const (
	defaultPerPage = 6
	supportURL     = "https://reqres.in/#support-heading"
	supportText    = "To keep ReqRes free, contributions towards server costs are appreciated!"
)

var names = [][2]string{
	{"George", "Bluth"}, {"Janet", "Weaver"}, {"Emma", "Wong"},
	{"Eve", "Holt"}, {"Charles", "Morris"}, {"Tracey", "Ramos"},
	{"Michael", "Lawson"}, {"Lindsay", "Ferguson"}, {"Tobias", "Funke"},
	{"Byron", "Fields"}, {"George", "Edwards"}, {"Rachel", "Howell"},
}

// fixtures are the registered users, id order.
var fixtures = func() []model.User {
	emails := datagen.KnownEmails()
	out := make([]model.User, len(names))
	for i, n := range names {
		u := model.NewProfile(emails[i], n[0], n[1])
		u.ID = model.NewID(i + 1)
		u.Avatar = model.String(fmt.Sprintf("https://reqres.in/img/faces/%d-image.jpg", i+1))
		out[i] = u
	}
	return out
}()

// Users returns a copy of the registered users.
func Users() []model.User {
	return append([]model.User(nil), fixtures...)
}

func findByEmail(email string) (model.User, bool) {
	email = strings.ToLower(strings.TrimSpace(email))
	for _, u := range fixtures {
		if u.GetEmail() == email {
			return u, true
		}
	}
	return model.User{}, false
}

func support() *model.Support {
	return &model.Support{URL: supportURL, Text: supportText}
}

// positiveQuery reads a positive integer query parameter, def otherwise.
func positiveQuery(c *gin.Context, key string, def int) int {
	n, err := strconv.Atoi(c.Query(key))
	if err != nil || n < 1 {
		return def
	}
	return n
}

func (s *Server) delay(c *gin.Context) bool {
	secs, err := strconv.Atoi(c.Query("delay"))
	if err != nil || secs <= 0 {
		return true
	}
	d := time.Duration(secs) * time.Second
	if d > s.opts.MaxDelay {
		d = s.opts.MaxDelay
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return true
	case <-c.Request.Context().Done():
		return false
	}
}

func (s *Server) listUsers(c *gin.Context) {
	if !s.delay(c) {
		c.Abort()
		return
	}
	page := positiveQuery(c, "page", 1)
	perPage := positiveQuery(c, "per_page", defaultPerPage)
	total := len(fixtures)
	totalPages := (total + perPage - 1) / perPage

	data := []model.User{}
	if start := (page - 1) * perPage; start < total {
		end := start + perPage
		if end > total {
			end = total
		}
		data = append(data, fixtures[start:end]...)
	}

	// gin.H keeps an empty data array on the wire
	c.JSON(http.StatusOK, gin.H{
		"page":        page,
		"per_page":    perPage,
		"total":       total,
		"total_pages": totalPages,
		"data":        data,
		"support":     support(),
	})
}

func (s *Server) getUser(c *gin.Context) {
	if !s.delay(c) {
		c.Abort()
		return
	}
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id < 1 || id > len(fixtures) {
		c.JSON(http.StatusNotFound, gin.H{})
		return
	}
	c.JSON(http.StatusOK, model.SingleUser{Data: fixtures[id-1], Support: support()})
}

func (s *Server) createUser(c *gin.Context) {
	body, err := readBody(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	body["id"] = strconv.FormatInt(s.nextID.Add(1), 10)
	body["createdAt"] = s.timestamp()
	c.JSON(http.StatusCreated, body)
}

func (s *Server) updateUser(c *gin.Context) {
	body, err := readBody(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	body["updatedAt"] = s.timestamp()
	c.JSON(http.StatusOK, body)
}

func (s *Server) deleteUser(c *gin.Context) {
	c.Status(http.StatusNoContent)
}

// readBody accepts JSON, urlencoded and multipart bodies. Uploaded files are
// echoed by their filename.
func readBody(c *gin.Context) (map[string]any, error) {
	out := map[string]any{}
	switch c.ContentType() {
	case gin.MIMEPOSTForm:
		if err := c.Request.ParseForm(); err != nil {
			return nil, fmt.Errorf("invalid form body: %w", err)
		}
		for k, v := range c.Request.PostForm {
			out[k] = strings.Join(v, ",")
		}
		return out, nil
	case gin.MIMEMultipartPOSTForm:
		form, err := c.MultipartForm()
		if err != nil {
			return nil, fmt.Errorf("invalid multipart body: %w", err)
		}
		for k, v := range form.Value {
			out[k] = strings.Join(v, ",")
		}
		for k, files := range form.File {
			if len(files) > 0 {
				out[k] = files[0].Filename
			}
		}
		return out, nil
	}

	raw, err := io.ReadAll(c.Request.Body)
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}
	if strings.TrimSpace(string(raw)) == "" {
		return out, nil
	}
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("invalid JSON body: %w", err)
	}
	if out == nil {
		out = map[string]any{}
	}
	return out, nil
}
