package web

import (
	"github.com/gin-gonic/gin"
)

// Context is passed to every rendered view.
type Context struct {
	Data any
	Err  error
	Path string
	c    *gin.Context
}

func NewContext(c *gin.Context) *Context {
	return &Context{
		Path: c.Request.URL.RequestURI(),
		c:    c,
	}
}

func (s *Context) GinContext() *gin.Context {
	return s.c
}

func (s *Context) WithData(d any) *Context {
	s.Data = d
	return s
}

func (s *Context) WithErr(err error) *Context {
	s.Err = err
	return s
}
