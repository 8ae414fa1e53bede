package main

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"github.com/urfave/cli"
	cs "github.com/webtor-io/common-services"
	"github.com/webtor-io/watch-ui/models"
	"github.com/webtor-io/watch-ui/services/catalog"
)

const (
	videoIDFlag        = "id"
	videoNameFlag      = "name"
	videoSizeFlag      = "size"
	videoDurationFlag  = "duration"
	videoMimeTypeFlag  = "mime-type"
	videoThumbnailFlag = "thumbnail"
	videoPathFlag      = "path"
)

func makeCatalogCMD() cli.Command {
	catalogCmd := cli.Command{
		Name:    "catalog",
		Aliases: []string{"c"},
		Usage:   "Video catalog operations",
	}
	configureCatalog(&catalogCmd)
	return catalogCmd
}

func configureCatalog(c *cli.Command) {
	listCmd := cli.Command{
		Name:    "list",
		Usage:   "Lists videos of the configured catalog",
		Aliases: []string{"l"},
		Action:  catalogList,
	}
	addCmd := cli.Command{
		Name:    "add",
		Usage:   "Adds or updates a video in the database catalog",
		Aliases: []string{"a"},
		Action:  catalogAdd,
		Flags: []cli.Flag{
			cli.StringFlag{Name: videoIDFlag, Usage: "video id"},
			cli.StringFlag{Name: videoNameFlag, Usage: "video name"},
			cli.Int64Flag{Name: videoSizeFlag, Usage: "size in bytes"},
			cli.Float64Flag{Name: videoDurationFlag, Usage: "duration in seconds, unknown if zero"},
			cli.StringFlag{Name: videoMimeTypeFlag, Usage: "mime type"},
			cli.StringFlag{Name: videoThumbnailFlag, Usage: "thumbnail url"},
			cli.StringFlag{Name: videoPathFlag, Usage: "path in storage, id is used if empty"},
		},
	}
	removeCmd := cli.Command{
		Name:    "remove",
		Usage:   "Removes a video from the database catalog",
		Aliases: []string{"r"},
		Action:  catalogRemove,
		Flags: []cli.Flag{
			cli.StringFlag{Name: videoIDFlag, Usage: "video id"},
		},
	}
	c.Subcommands = []cli.Command{listCmd, addCmd, removeCmd}
	for k := range c.Subcommands {
		configureSubCatalog(&c.Subcommands[k])
	}
}

func configureSubCatalog(c *cli.Command) {
	c.Flags = cs.RegisterPGFlags(c.Flags)
	c.Flags = catalog.RegisterFlags(c.Flags)
}

func catalogList(c *cli.Context) error {
	// Setting DB
	pg := cs.NewPG(c)
	defer pg.Close()

	// Setting Catalog
	cat, err := catalog.New(c, http.DefaultClient, pg)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 1*time.Minute)
	defer cancel()

	vs, err := cat.ListVideos(ctx)
	if err != nil {
		return errors.Wrapf(err, "failed to list videos catalog=%v", cat.GetName())
	}
	for _, v := range vs {
		fmt.Printf("%v\t%v\t%v\n", v.ID, humanize.Bytes(uint64(max(v.Size, 0))), v.Name)
	}
	return nil
}

func catalogAdd(c *cli.Context) error {
	v := &models.Video{
		VideoID:   c.String(videoIDFlag),
		Name:      c.String(videoNameFlag),
		SizeBytes: c.Int64(videoSizeFlag),
		MimeType:  c.String(videoMimeTypeFlag),
		Thumbnail: c.String(videoThumbnailFlag),
		Path:      c.String(videoPathFlag),
	}
	if v.VideoID == "" || v.Name == "" {
		return errors.New("id and name are required")
	}
	if d := c.Float64(videoDurationFlag); d > 0 {
		v.DurationSec = &d
	}
	return withCatalogDB(c, func(ctx context.Context, pg *cs.PG) error {
		if err := models.UpsertVideo(ctx, pg.Get(), v); err != nil {
			return err
		}
		log.WithField("video_id", v.VideoID).Info("video added")
		return nil
	})
}

func catalogRemove(c *cli.Context) error {
	id := c.String(videoIDFlag)
	if id == "" {
		return errors.New("id is required")
	}
	return withCatalogDB(c, func(ctx context.Context, pg *cs.PG) error {
		if err := models.DeleteVideo(ctx, pg.Get(), id); err != nil {
			return err
		}
		log.WithField("video_id", id).Info("video removed")
		return nil
	})
}

func withCatalogDB(c *cli.Context, f func(ctx context.Context, pg *cs.PG) error) error {
	// Setting DB
	pg := cs.NewPG(c)
	defer pg.Close()
	if pg.Get() == nil {
		return errors.New("database is not configured")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 1*time.Minute)
	defer cancel()

	return f(ctx, pg)
}
