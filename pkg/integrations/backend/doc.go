// Package backend is a client for the blueprint backend: the service that
// turns a photo into a blueprint and places blueprints in a Minecraft world
// over RCON.
//
// # Endpoints
//
//   - GET /api/health reports the backend status and version.
//   - POST /api/blueprint takes a multipart image and style and answers
//     with generated blueprint JSON, which [Client.GenerateBlueprint] runs
//     through [blueprint.Normalize].
//   - POST /api/build takes a [build.Request] and streams progress as
//     newline-delimited JSON until the build completes or fails.
//
// # Usage
//
//	c, err := backend.NewClient("http://localhost:8000")
//	res, err := c.GenerateBlueprint(ctx, img, "house.png", backend.DefaultStyle)
//
//	tracker := build.NewTracker(build.WithOnChange(show))
//	err = c.Track(ctx, build.NewRequest(res.Blueprint), tracker)
//
// Failed calls return a [*errors.Error] whose message is suitable for
// showing to the user as is.
//
// [blueprint.Normalize]: github.com/blockprint/blockprint/pkg/blueprint.Normalize
// [build.Request]: github.com/blockprint/blockprint/pkg/build.Request
// [*errors.Error]: github.com/blockprint/blockprint/pkg/errors.Error
package backend
