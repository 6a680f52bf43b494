// Package router exposes the user list and the carousel over HTTP.
package router

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	validator "github.com/go-playground/validator/v10"

	"github.com/patric-chuzhbe/useradmin/internal/carousel"
	"github.com/patric-chuzhbe/useradmin/internal/gzippedhttp"
	"github.com/patric-chuzhbe/useradmin/internal/logger"
	"github.com/patric-chuzhbe/useradmin/internal/models"
	"github.com/patric-chuzhbe/useradmin/internal/userform"
	"github.com/patric-chuzhbe/useradmin/internal/userstore"
	"github.com/patric-chuzhbe/useradmin/internal/userview"
)

type userReader interface {
	Users() []models.User
	Status() userstore.Status
}

type userWriter interface {
	Add(usr models.User)
	Update(usr models.User)
	Delete(id models.UserID)
}

type fetcher interface {
	FetchAll(ctx context.Context) error
}

type userStore interface {
	userReader
	userWriter
	fetcher
}

type slideShow interface {
	Snapshot() models.CarouselResponse
	Next()
	Prev()
	GoTo(index int) error
}

type Router struct {
	store         userStore
	carousel      slideShow
	userValidator *userform.Validator
	queryValidate *validator.Validate
	now           func() time.Time
}

type InitOption func(*initOptions)

type initOptions struct {
	now func() time.Time
}

// WithClock sets the time source for ids of users created without one.
func WithClock(now func() time.Time) InitOption {
	return func(options *initOptions) {
		options.now = now
	}
}

func New(store userStore, slides slideShow, optionsProto ...InitOption) *chi.Mux {
	options := &initOptions{
		now: time.Now,
	}
	for _, protoOption := range optionsProto {
		protoOption(options)
	}

	myRouter := &Router{
		store:         store,
		carousel:      slides,
		userValidator: userform.NewValidator(),
		queryValidate: validator.New(),
		now:           options.now,
	}

	router := chi.NewRouter()
	router.Use(
		logger.WithLoggingHTTPMiddleware,
		gzippedhttp.UngzipRequest,
	)
	router.Get(`/ping`, myRouter.GetPing)

	router.Route(`/api`, func(api chi.Router) {
		api.Use(gzippedhttp.GzipResponse)

		api.Get(`/users`, myRouter.GetApiusers)
		api.Post(`/users`, myRouter.PostApiusers)
		api.Get(`/users/status`, myRouter.GetApiusersstatus)
		api.Post(`/users/fetch`, myRouter.PostApiusersfetch)
		api.Put(`/users/{id}`, myRouter.PutApiusersID)
		api.Delete(`/users/{id}`, myRouter.DeleteApiusersID)

		api.Get(`/carousel`, myRouter.GetApicarousel)
		api.Post(`/carousel/next`, myRouter.PostApicarouselnext)
		api.Post(`/carousel/prev`, myRouter.PostApicarouselprev)
		api.Post(`/carousel/slides/{index}`, myRouter.PostApicarouselslides)
	})

	return router
}

func writeJSON(response http.ResponseWriter, status int, payload any) {
	response.Header().Set("Content-Type", "application/json")
	response.WriteHeader(status)
	if err := json.NewEncoder(response).Encode(payload); err != nil {
		logger.Log.Debugw("writing response body", "error", err)
	}
}

func writeError(response http.ResponseWriter, status int, err error) {
	writeJSON(response, status, models.ErrorResponse{Error: err.Error()})
}

func (router *Router) GetPing(response http.ResponseWriter, _ *http.Request) {
	response.WriteHeader(http.StatusOK)
}

func parsePage(raw string) (int, error) {
	if raw == "" {
		return 1, nil
	}
	return strconv.Atoi(raw)
}

// GetApiusers returns one derived page of the list.
func (router *Router) GetApiusers(response http.ResponseWriter, request *http.Request) {
	values := request.URL.Query()

	page, err := parsePage(values.Get("page"))
	if err != nil {
		writeError(response, http.StatusBadRequest, errors.New("page must be an integer"))
		return
	}

	query := models.UsersQuery{
		Search:    values.Get("search"),
		Sort:      values.Get("sort"),
		Direction: values.Get("direction"),
		Page:      page,
	}
	if err := router.queryValidate.Struct(query); err != nil {
		writeError(response, http.StatusBadRequest, err)
		return
	}

	sortKey, err := userview.ParseSortKey(query.Sort)
	if err != nil {
		writeError(response, http.StatusBadRequest, err)
		return
	}
	direction, err := userview.ParseDirection(query.Direction)
	if err != nil {
		writeError(response, http.StatusBadRequest, err)
		return
	}

	result := userview.Derive(router.store.Users(), userview.Query{
		Sort:   userview.Sort{Key: sortKey, Direction: direction},
		Search: query.Search,
		Page:   query.Page,
	})

	writeJSON(response, http.StatusOK, models.UsersPageResponse{
		Items:     result.Items,
		Total:     result.Total,
		Page:      query.Page,
		PageCount: result.PageCount,
		Sort:      string(sortKey),
		Direction: string(direction),
		Search:    query.Search,
	})
}

func (router *Router) statusResponse() models.StoreStatusResponse {
	status := router.store.Status()

	return models.StoreStatusResponse{
		Loading: status.Loading,
		Error:   status.Error,
		Count:   status.Count,
	}
}

func (router *Router) GetApiusersstatus(response http.ResponseWriter, _ *http.Request) {
	writeJSON(response, http.StatusOK, router.statusResponse())
}

// PostApiusersfetch reloads the list from the remote source. A response
// superseded by a newer fetch is not an error for the caller.
func (router *Router) PostApiusersfetch(response http.ResponseWriter, request *http.Request) {
	err := router.store.FetchAll(request.Context())
	if err != nil && !errors.Is(err, userstore.ErrStaleResponse) {
		writeError(response, http.StatusBadGateway, err)
		return
	}

	writeJSON(response, http.StatusOK, router.statusResponse())
}

func (router *Router) decodeUser(request *http.Request) (models.User, error) {
	var usr models.User
	if err := json.NewDecoder(request.Body).Decode(&usr); err != nil {
		return models.User{}, err
	}
	return usr, nil
}

// validateUser writes 422 and reports false when usr is invalid.
func (router *Router) validateUser(response http.ResponseWriter, usr models.User) bool {
	errs := router.userValidator.Validate(usr)
	if len(errs) == 0 {
		return true
	}

	result := models.ValidationErrorResponse{Errors: make(map[string]string, len(errs))}
	for field, msg := range errs {
		result.Errors[string(field)] = msg
	}
	writeJSON(response, http.StatusUnprocessableEntity, result)

	return false
}

func (router *Router) PostApiusers(response http.ResponseWriter, request *http.Request) {
	usr, err := router.decodeUser(request)
	if err != nil {
		writeError(response, http.StatusBadRequest, err)
		return
	}
	if usr.ID.IsZero() {
		usr.ID = models.NewClientID(router.now())
	}
	if !router.validateUser(response, usr) {
		return
	}

	router.store.Add(usr)
	logger.Log.Infow("user added", "id", usr.ID.String(), "request_id", logger.RequestID(request.Context()))

	writeJSON(response, http.StatusCreated, usr)
}

// PutApiusersID replaces a user. The id comes from the path; any id in the
// body is skipped without being decoded.
func (router *Router) PutApiusersID(response http.ResponseWriter, request *http.Request) {
	var body struct {
		models.User
		ID json.RawMessage `json:"id"`
	}
	if err := json.NewDecoder(request.Body).Decode(&body); err != nil {
		writeError(response, http.StatusBadRequest, err)
		return
	}
	usr := body.User
	usr.ID = models.ParseUserID(chi.URLParam(request, "id"))
	if !router.validateUser(response, usr) {
		return
	}

	router.store.Update(usr)

	response.WriteHeader(http.StatusNoContent)
}

func (router *Router) DeleteApiusersID(response http.ResponseWriter, request *http.Request) {
	id := models.ParseUserID(chi.URLParam(request, "id"))
	router.store.Delete(id)
	logger.Log.Infow("user deleted", "id", id.String(), "request_id", logger.RequestID(request.Context()))

	response.WriteHeader(http.StatusNoContent)
}

func (router *Router) GetApicarousel(response http.ResponseWriter, _ *http.Request) {
	writeJSON(response, http.StatusOK, router.carousel.Snapshot())
}

func (router *Router) PostApicarouselnext(response http.ResponseWriter, _ *http.Request) {
	router.carousel.Next()
	writeJSON(response, http.StatusOK, router.carousel.Snapshot())
}

func (router *Router) PostApicarouselprev(response http.ResponseWriter, _ *http.Request) {
	router.carousel.Prev()
	writeJSON(response, http.StatusOK, router.carousel.Snapshot())
}

func (router *Router) PostApicarouselslides(response http.ResponseWriter, request *http.Request) {
	index, err := strconv.Atoi(chi.URLParam(request, "index"))
	if err != nil {
		writeError(response, http.StatusBadRequest, errors.New("slide index must be an integer"))
		return
	}

	err = router.carousel.GoTo(index)
	if errors.Is(err, carousel.ErrSlideOutOfRange) {
		writeError(response, http.StatusNotFound, err)
		return
	}
	if err != nil {
		writeError(response, http.StatusInternalServerError, err)
		return
	}

	writeJSON(response, http.StatusOK, router.carousel.Snapshot())
}
