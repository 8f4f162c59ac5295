package mockplatform

import (
	"errors"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/birbparty/commerce-sdk/internal/telemetry"
	"github.com/birbparty/commerce-sdk/sdk/codec"
	"github.com/birbparty/commerce-sdk/sdk/model"
	"github.com/birbparty/commerce-sdk/sdk/request"
	"github.com/birbparty/commerce-sdk/sdk/resources"
)

// Handler serves the platform API for any number of projects. Projects
// are created on first use.
type Handler struct {
	cfg      *Config
	now      func() time.Time
	mu       sync.Mutex
	projects map[string]*Project
	tokens   *tokenStore
}

// NewHandler creates a new handler instance
func NewHandler(cfg *Config) *Handler {
	return &Handler{
		cfg:      cfg,
		now:      func() time.Time { return time.Now().UTC() },
		projects: make(map[string]*Project),
		tokens:   newTokenStore(),
	}
}

// Project returns the project stored under key, creating it if needed.
func (h *Handler) Project(key string) (*Project, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if p, ok := h.projects[key]; ok {
		return p, nil
	}
	p := newProject(key, h.now)
	if h.cfg.Seed {
		if err := p.Seed(); err != nil {
			return nil, err
		}
	}
	h.projects[key] = p
	return p, nil
}

func (h *Handler) project(c *fiber.Ctx) (*Project, error) {
	return h.Project(c.Params("project"))
}

// queryValues returns every query argument, repeated keys included.
func queryValues(c *fiber.Ctx) url.Values {
	values := url.Values{}
	c.Context().QueryArgs().VisitAll(func(k, v []byte) {
		values.Add(string(k), string(v))
	})
	return values
}

// pathRef reads the :ref parameter, which is an id or "key=<key>".
func pathRef(c *fiber.Ctx, name string) (id, key string, err error) {
	raw, err := url.PathUnescape(c.Params(name))
	if err != nil {
		return "", "", invalidInput("Malformed path segment %q", c.Params(name))
	}
	if k, ok := strings.CutPrefix(raw, "key="); ok {
		return "", k, nil
	}
	return raw, "", nil
}

// GetProject handles GET /:project
func (h *Handler) GetProject(c *fiber.Ctx) error {
	p, err := h.project(c)
	if err != nil {
		return err
	}
	return c.JSON(resources.Project{
		Key:        p.Key,
		Name:       p.Key,
		Version:    1,
		Countries:  []string{"DE", "US"},
		Currencies: []string{"EUR", "USD"},
		Languages:  []string{"en", "de"},
	})
}

func categories(p *Project) *collection[resources.Category]        { return p.Categories }
func carts(p *Project) *collection[resources.Cart]                 { return p.Carts }
func products(p *Project) *collection[resources.ProductProjection] { return p.Products }
func objects(p *Project) *collection[StoredObject]                 { return p.Objects }

func queryHandler[T any](h *Handler, of func(*Project) *collection[T]) fiber.Handler {
	return func(c *fiber.Ctx) error {
		p, err := h.project(c)
		if err != nil {
			return err
		}
		var q ListParams
		if err := decodeQuery(&q, queryValues(c)); err != nil {
			return err
		}
		page, err := of(p).Query(q)
		if err != nil {
			return err
		}
		return c.JSON(page)
	}
}

func getHandler[T any](h *Handler, of func(*Project) *collection[T]) fiber.Handler {
	return func(c *fiber.Ctx) error {
		p, err := h.project(c)
		if err != nil {
			return err
		}
		id, key, err := pathRef(c, "ref")
		if err != nil {
			return err
		}
		var v T
		if key != "" {
			v, err = of(p).GetByKey(key)
		} else {
			v, err = of(p).Get(id)
		}
		if err != nil {
			return err
		}
		return c.JSON(v)
	}
}

func deleteHandler[T any](h *Handler, of func(*Project) *collection[T]) fiber.Handler {
	return func(c *fiber.Ctx) error {
		p, err := h.project(c)
		if err != nil {
			return err
		}
		id, key, err := pathRef(c, "ref")
		if err != nil {
			return err
		}
		var vp VersionParam
		if err := decodeQuery(&vp, queryValues(c)); err != nil {
			return err
		}
		var v T
		if key != "" {
			v, err = of(p).DeleteByKey(key, *vp.Version)
		} else {
			v, err = of(p).Delete(id, *vp.Version)
		}
		if err != nil {
			return err
		}
		return c.JSON(v)
	}
}

// updateHandler decodes the update body and applies the changes prepared
// by changes to the addressed resource.
func updateHandler[T any](h *Handler, of func(*Project) *collection[T], changes func(*Project, []request.UpdateAction) ([]func(*T) error, error)) fiber.Handler {
	return func(c *fiber.Ctx) error {
		p, err := h.project(c)
		if err != nil {
			return err
		}
		id, key, err := pathRef(c, "ref")
		if err != nil {
			return err
		}
		actions, version, err := decodeUpdate(c.Body())
		if err != nil {
			return err
		}
		fns, err := changes(p, actions)
		if err != nil {
			return err
		}
		apply := func(v *T) error {
			for _, fn := range fns {
				if err := fn(v); err != nil {
					return err
				}
			}
			return nil
		}

		var v T
		if key != "" {
			v, err = of(p).UpdateByKey(key, version, apply)
		} else {
			v, err = of(p).Update(id, version, apply)
		}
		if err != nil {
			return err
		}
		return c.JSON(v)
	}
}

func decodeUpdate(body []byte) ([]request.UpdateAction, int64, error) {
	var ub UpdateBody
	if err := codec.Unmarshal(body, &ub); err != nil {
		return nil, 0, invalidInput("Request body does not contain valid JSON.")
	}
	if err := validate.Struct(ub); err != nil {
		return nil, 0, invalidInput("Invalid update: %v", err)
	}
	actions := make([]request.UpdateAction, len(ub.Actions))
	for i, raw := range ub.Actions {
		if err := codec.Unmarshal(raw, &actions[i]); err != nil {
			return nil, 0, invalidInput("Invalid action %d: %v", i, err)
		}
	}
	return actions, ub.Version, nil
}

// CreateCategory handles POST /:project/categories
func (h *Handler) CreateCategory(c *fiber.Ctx) error {
	p, err := h.project(c)
	if err != nil {
		return err
	}
	var draft resources.CategoryDraft
	if err := codec.Unmarshal(c.Body(), &draft); err != nil {
		return invalidInput("Request body does not contain valid JSON.")
	}
	category, err := p.NewCategory(draft)
	if err != nil {
		return err
	}
	created, err := p.Categories.Create(category)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(created)
}

// CreateCart handles POST /:project/carts
func (h *Handler) CreateCart(c *fiber.Ctx) error {
	p, err := h.project(c)
	if err != nil {
		return err
	}
	var draft resources.CartDraft
	if err := codec.Unmarshal(c.Body(), &draft); err != nil {
		return invalidInput("Request body does not contain valid JSON.")
	}
	cart, err := p.NewCart(draft)
	if err != nil {
		return err
	}
	created, err := p.Carts.Create(cart)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(created)
}

// SearchProducts handles GET /:project/product-projections/search
func (h *Handler) SearchProducts(c *fiber.Ctx) error {
	p, err := h.project(c)
	if err != nil {
		return err
	}
	values := queryValues(c)
	var sp SearchParams
	if err := decodeQuery(&sp, values); err != nil {
		return err
	}

	q := SearchQuery{
		Filter:       sp.Filter,
		FilterQuery:  values["filter.query"],
		FilterFacets: values["filter.facets"],
		Facets:       append(append([]string{}, sp.Facet...), values["facet.range"]...),
		Limit:        defaultLimit,
	}
	if sp.Limit != nil {
		q.Limit = *sp.Limit
	}
	if sp.Offset != nil {
		q.Offset = *sp.Offset
	}
	for k, v := range values {
		if k == "text" {
			q.Text = v[0]
		} else if lang, ok := strings.CutPrefix(k, "text."); ok {
			q.Lang, q.Text = lang, v[0]
		}
	}

	result, err := Search(p.Products.All(), q)
	if err != nil {
		return err
	}
	telemetry.WithContext(c.UserContext()).
		WithField("hits", result.Total).
		Debug("Search answered")
	return c.JSON(result)
}

// UpsertCustomObject handles POST /:project/custom-objects
func (h *Handler) UpsertCustomObject(c *fiber.Ctx) error {
	p, err := h.project(c)
	if err != nil {
		return err
	}
	var draft model.CustomObjectDraft[codec.RawMessage]
	if err := codec.Unmarshal(c.Body(), &draft); err != nil {
		return invalidInput("Request body does not contain valid JSON.")
	}
	if err := validate.Struct(draft); err != nil {
		return invalidInput("Invalid custom object: %v", err)
	}
	if len(draft.Value) == 0 {
		return invalidInput("Invalid custom object: value is required")
	}

	obj, err := p.Objects.Upsert(objectKey(draft.Container, draft.Key), draft.Version, StoredObject{
		Container: draft.Container,
		Key:       draft.Key,
		Value:     draft.Value,
	})
	if err != nil {
		return err
	}
	status := fiber.StatusOK
	if obj.Version == 1 {
		status = fiber.StatusCreated
	}
	return c.Status(status).JSON(obj)
}

func (h *Handler) objectRef(c *fiber.Ctx) (*Project, string, error) {
	p, err := h.project(c)
	if err != nil {
		return nil, "", err
	}
	container, err1 := url.PathUnescape(c.Params("container"))
	key, err2 := url.PathUnescape(c.Params("key"))
	if err := errors.Join(err1, err2); err != nil {
		return nil, "", invalidInput("Malformed custom object path: %v", err)
	}
	return p, objectKey(container, key), nil
}

// GetCustomObject handles GET /:project/custom-objects/:container/:key
func (h *Handler) GetCustomObject(c *fiber.Ctx) error {
	p, key, err := h.objectRef(c)
	if err != nil {
		return err
	}
	obj, err := p.Objects.GetByKey(key)
	if err != nil {
		return err
	}
	return c.JSON(obj)
}

// DeleteCustomObject handles DELETE /:project/custom-objects/:container/:key
func (h *Handler) DeleteCustomObject(c *fiber.Ctx) error {
	p, key, err := h.objectRef(c)
	if err != nil {
		return err
	}
	var vp VersionParam
	if err := decodeQuery(&vp, queryValues(c)); err != nil {
		return err
	}
	obj, err := p.Objects.DeleteByKey(key, *vp.Version)
	if err != nil {
		return err
	}
	return c.JSON(obj)
}

// Health handles GET /health
func (h *Handler) Health(c *fiber.Ctx) error {
	h.mu.Lock()
	n := len(h.projects)
	h.mu.Unlock()
	return c.JSON(fiber.Map{
		"status":   "healthy",
		"service":  "mockplatform",
		"projects": n,
	})
}
