package testutil

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"sort"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/Gadeoli/todoapp-mobile/pkg/types"
)

// dateLayout is the format of the ?date= filter
const dateLayout = "2006-01-02 15:04:05"

// RecordedRequest is one request received by the fake service
type RecordedRequest struct {
	Method string
	Path   string
	Query  string
	Header http.Header
	Body   []byte
}

type fakeUser struct {
	ID           int64
	Name         string
	Email        string
	PasswordHash []byte
}

type injectedFailure struct {
	status  int
	message string
}

// FakeService is an in-memory task service for tests. It speaks the same
// HTTP/JSON contract as the real backend.
type FakeService struct {
	URL string

	server *httptest.Server
	secret []byte

	mu         sync.Mutex
	users      map[string]*fakeUser
	tasks      map[int64]*types.Task
	nextUserID int64
	nextTaskID int64
	requests   []RecordedRequest
	failures   map[string]injectedFailure
}

// NewFakeService starts a fake task service, closed when the test ends
func NewFakeService(t *testing.T) *FakeService {
	t.Helper()

	gin.SetMode(gin.TestMode)

	f := &FakeService{
		secret:   []byte("fake-service-secret"),
		users:    make(map[string]*fakeUser),
		tasks:    make(map[int64]*types.Task),
		failures: make(map[string]injectedFailure),
	}

	router := gin.New()
	router.Use(f.record, f.injectFailures)

	router.POST("/signup", f.handleSignup)
	router.POST("/signin", f.handleSignin)

	protected := router.Group("/tasks", f.authenticate)
	{
		protected.GET("", f.handleListTasks)
		protected.POST("", f.handleCreateTask)
		protected.PUT("/:id/toggle", f.handleToggleTask)
		protected.DELETE("/:id", f.handleDeleteTask)
	}

	f.server = httptest.NewServer(router)
	f.URL = f.server.URL
	t.Cleanup(f.server.Close)

	return f
}

// AddUser registers a user directly and returns its id
func (f *FakeService) AddUser(name, email, password string) int64 {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		panic(err)
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextUserID++
	f.users[strings.ToLower(email)] = &fakeUser{
		ID:           f.nextUserID,
		Name:         name,
		Email:        email,
		PasswordHash: hash,
	}
	return f.nextUserID
}

// AddTask stores a task owned by userID and returns it
func (f *FakeService) AddTask(userID int64, desc string, estimateAt time.Time, doneAt *time.Time) types.Task {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextTaskID++
	task := &types.Task{
		ID:         f.nextTaskID,
		Desc:       desc,
		EstimateAt: estimateAt,
		DoneAt:     doneAt,
		UserID:     userID,
	}
	f.tasks[task.ID] = task
	return *task
}

// Task returns a stored task
func (f *FakeService) Task(id int64) (types.Task, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	task, ok := f.tasks[id]
	if !ok {
		return types.Task{}, false
	}
	return *task, true
}

// Token issues a bearer token for userID, as /signin would
func (f *FakeService) Token(userID int64) string {
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"id":  userID,
		"iat": time.Now().Unix(),
		"exp": time.Now().Add(time.Hour).Unix(),
	}).SignedString(f.secret)
	if err != nil {
		panic(err)
	}
	return token
}

// Fail makes every request matching method and path answer status/message
func (f *FakeService) Fail(method, path string, status int, message string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failures[method+" "+path] = injectedFailure{status: status, message: message}
}

// Requests returns every request received so far
func (f *FakeService) Requests() []RecordedRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]RecordedRequest(nil), f.requests...)
}

// RequestsTo returns the requests received for method and path
func (f *FakeService) RequestsTo(method, path string) []RecordedRequest {
	var out []RecordedRequest
	for _, r := range f.Requests() {
		if r.Method == method && r.Path == path {
			out = append(out, r)
		}
	}
	return out
}

func (f *FakeService) record(c *gin.Context) {
	var body []byte
	if c.Request.Body != nil {
		body, _ = io.ReadAll(c.Request.Body)
		c.Request.Body = io.NopCloser(bytes.NewReader(body))
	}

	f.mu.Lock()
	f.requests = append(f.requests, RecordedRequest{
		Method: c.Request.Method,
		Path:   c.Request.URL.Path,
		Query:  c.Request.URL.RawQuery,
		Header: c.Request.Header.Clone(),
		Body:   body,
	})
	f.mu.Unlock()

	c.Next()
}

func (f *FakeService) injectFailures(c *gin.Context) {
	f.mu.Lock()
	failure, ok := f.failures[c.Request.Method+" "+c.Request.URL.Path]
	f.mu.Unlock()

	if ok {
		c.AbortWithStatusJSON(failure.status, gin.H{"error": failure.message})
		return
	}
	c.Next()
}

func (f *FakeService) authenticate(c *gin.Context) {
	header := c.GetHeader("Authorization")
	scheme, tokenString, found := strings.Cut(header, " ")
	if !found || !strings.EqualFold(scheme, "bearer") {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", token.Header["alg"])
		}
		return f.secret, nil
	})
	if err != nil || !token.Valid {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	id, idOK := claims["id"].(float64)
	if !ok || !idOK {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}
	c.Set("userID", int64(id))
	c.Next()
}

func (f *FakeService) handleSignup(c *gin.Context) {
	var req struct {
		Name            string `json:"name"`
		Email           string `json:"email"`
		Password        string `json:"password"`
		ConfirmPassword string `json:"confirmPassword"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid body"})
		return
	}
	if req.Name == "" || req.Email == "" || req.Password == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Incomplete data"})
		return
	}
	if req.Password != req.ConfirmPassword {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Passwords do not match"})
		return
	}

	f.mu.Lock()
	_, taken := f.users[strings.ToLower(req.Email)]
	f.mu.Unlock()
	if taken {
		c.JSON(http.StatusBadRequest, gin.H{"error": "User already registered"})
		return
	}

	id := f.AddUser(req.Name, req.Email, req.Password)
	c.JSON(http.StatusOK, gin.H{"id": id, "name": req.Name, "email": req.Email})
}

func (f *FakeService) handleSignin(c *gin.Context) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || req.Email == "" || req.Password == "" {
		c.String(http.StatusBadRequest, "Provide email and password")
		return
	}

	f.mu.Lock()
	user, ok := f.users[strings.ToLower(req.Email)]
	f.mu.Unlock()
	if !ok || bcrypt.CompareHashAndPassword(user.PasswordHash, []byte(req.Password)) != nil {
		c.String(http.StatusUnauthorized, "Invalid email or password")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"id":    user.ID,
		"name":  user.Name,
		"email": user.Email,
		"token": f.Token(user.ID),
	})
}

func (f *FakeService) handleListTasks(c *gin.Context) {
	userID := c.GetInt64("userID")

	maxDate := endOfDay(time.Now())
	if raw := c.Query("date"); raw != "" {
		parsed, err := time.ParseInLocation(dateLayout, raw, time.Local)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid date"})
			return
		}
		maxDate = parsed
	}

	f.mu.Lock()
	tasks := make([]types.Task, 0, len(f.tasks))
	for _, task := range f.tasks {
		if task.UserID == userID && !task.EstimateAt.After(maxDate) {
			tasks = append(tasks, *task)
		}
	}
	f.mu.Unlock()

	sort.Slice(tasks, func(i, j int) bool {
		if tasks[i].EstimateAt.Equal(tasks[j].EstimateAt) {
			return tasks[i].ID < tasks[j].ID
		}
		return tasks[i].EstimateAt.Before(tasks[j].EstimateAt)
	})

	c.JSON(http.StatusOK, tasks)
}

func (f *FakeService) handleCreateTask(c *gin.Context) {
	var req struct {
		Desc       string    `json:"desc"`
		EstimateAt time.Time `json:"estimateAt"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid body"})
		return
	}
	if strings.TrimSpace(req.Desc) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Description is required"})
		return
	}

	task := f.AddTask(c.GetInt64("userID"), req.Desc, req.EstimateAt, nil)
	c.JSON(http.StatusCreated, task)
}

func (f *FakeService) handleToggleTask(c *gin.Context) {
	task, ok := f.ownedTask(c)
	if !ok {
		return
	}

	f.mu.Lock()
	if task.DoneAt == nil {
		now := time.Now()
		task.DoneAt = &now
	} else {
		task.DoneAt = nil
	}
	updated := *task
	f.mu.Unlock()

	c.JSON(http.StatusOK, updated)
}

func (f *FakeService) handleDeleteTask(c *gin.Context) {
	task, ok := f.ownedTask(c)
	if !ok {
		return
	}

	f.mu.Lock()
	delete(f.tasks, task.ID)
	f.mu.Unlock()

	c.Status(http.StatusNoContent)
}

func (f *FakeService) ownedTask(c *gin.Context) (*types.Task, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid task id"})
		return nil, false
	}

	f.mu.Lock()
	task, ok := f.tasks[id]
	f.mu.Unlock()

	if !ok || task.UserID != c.GetInt64("userID") {
		c.JSON(http.StatusNotFound, gin.H{"error": fmt.Sprintf("Task %d not found", id)})
		return nil, false
	}
	return task, true
}

func endOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 23, 59, 59, 0, t.Location())
}
