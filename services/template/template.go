package template

import (
	"html/template"
	"io/fs"
	"path"
	"strings"

	"github.com/gin-contrib/multitemplate"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"github.com/webtor-io/watch-ui/services/web"
)

const (
	viewsDir    = "views"
	layoutsDir  = "layouts"
	partialsDir = "partials"
)

// Manager parses views from fsys into the multitemplate renderer. Every view
// is parsed together with its layout and all partials.
type Manager struct {
	re       multitemplate.Renderer
	fs       fs.FS
	funcs    template.FuncMap
	builders []*Builder
}

func NewManager(re multitemplate.Renderer, fsys fs.FS) *Manager {
	return &Manager{
		re:    re,
		fs:    fsys,
		funcs: template.FuncMap{},
	}
}

func (s *Manager) WithFuncs(fm template.FuncMap) *Manager {
	for k, v := range fm {
		s.funcs[k] = v
	}
	return s
}

func (s *Manager) MustRegisterViews(pattern string) *Builder {
	b := &Builder{
		pattern: pattern,
		funcs:   template.FuncMap{},
	}
	s.builders = append(s.builders, b)
	return b
}

func (s *Manager) Init() error {
	partials, err := fs.Glob(s.fs, path.Join(partialsDir, "*.html"))
	if err != nil {
		return errors.Wrap(err, "failed to glob partials")
	}
	for _, b := range s.builders {
		views, err := fs.Glob(s.fs, path.Join(viewsDir, b.pattern+".html"))
		if err != nil {
			return errors.Wrapf(err, "failed to glob views pattern=%v", b.pattern)
		}
		if len(views) == 0 {
			return errors.Errorf("no views found for pattern=%v", b.pattern)
		}
		for _, v := range views {
			name := strings.TrimSuffix(strings.TrimPrefix(v, viewsDir+"/"), ".html")
			if err := s.add(b, name, v, partials); err != nil {
				return err
			}
		}
	}
	return nil
}

func (s *Manager) add(b *Builder, name string, view string, partials []string) error {
	var files []string
	if b.layout != "" {
		files = append(files, path.Join(layoutsDir, b.layout+".html"))
	}
	files = append(files, partials...)
	files = append(files, view)
	funcs := template.FuncMap{}
	for k, v := range s.funcs {
		funcs[k] = v
	}
	for k, v := range b.funcs {
		funcs[k] = v
	}
	t, err := template.New(path.Base(files[0])).Funcs(funcs).ParseFS(s.fs, files...)
	if err != nil {
		return errors.Wrapf(err, "failed to parse view name=%v", name)
	}
	s.re.Add(name, t)
	log.WithField("view", name).Debug("view registered")
	return nil
}

// Builder groups views sharing a layout and helper functions.
type Builder struct {
	pattern string
	layout  string
	funcs   template.FuncMap
}

func (b *Builder) WithLayout(layout string) *Builder {
	b.layout = layout
	return b
}

func (b *Builder) WithFuncs(fm template.FuncMap) *Builder {
	for k, v := range fm {
		b.funcs[k] = v
	}
	return b
}

func (b *Builder) Build(name string) *Template {
	return &Template{name: name}
}

type Template struct {
	name string
}

func (t *Template) HTML(code int, ctx *web.Context) {
	ctx.GinContext().HTML(code, t.name, ctx)
}
