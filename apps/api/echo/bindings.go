package echoapi

import (
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/mtihani/core"
)

func bindPaging(ctx echo.Context) (core.Paging, error) {
	var paging core.Paging
	if err := ctx.Bind(&paging); err != nil {
		return core.Paging{}, errors.Wrap(err, "binding paging params")
	}
	paging.Clean()
	return paging, nil
}

// listResponse is the shared shape of paginated list endpoints.
func listResponse(name string, items interface{}, total int, paging core.Paging) echo.Map {
	return echo.Map{
		"success": true,
		name:      items,
		"total":   total,
		"page":    paging.Page,
		"pages":   paging.Pages(total),
	}
}
