package studio

import (
	"net/url"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/Rana718/tablekeep/internal/export"
)

// tableParam returns the decoded :name segment. Decoding here rather than
// through fiber's UnescapePath keeps an escaped slash inside one segment.
func tableParam(c *fiber.Ctx) string {
	raw := c.Params("name")
	if name, err := url.PathUnescape(raw); err == nil {
		return name
	}
	return raw
}

func (s *Server) handleGetTables(c *fiber.Ctx) error {
	return c.JSON(Response{
		Success: true,
		Data:    s.service.GetTables(),
	})
}

func (s *Server) handleGetTable(c *fiber.Ctx) error {
	name := tableParam(c)
	info, ok := s.service.GetTable(name)
	if !ok {
		return c.Status(fiber.StatusNotFound).JSON(Response{
			Success: false,
			Message: "table " + strconv.Quote(name) + " does not exist",
		})
	}
	return c.JSON(Response{
		Success: true,
		Data:    info,
	})
}

func (s *Server) handleCreateTables(c *fiber.Ctx) error {
	var req NamesRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request")
	}

	created, err := s.store.CreateTables(req.Names)
	if err != nil {
		return s.fail(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(Response{
		Success: true,
		Message: "Tables created successfully",
		Data:    created,
	})
}

func (s *Server) handleRenameTables(c *fiber.Ctx) error {
	var req RenameTablesRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request")
	}

	if err := s.store.RenameTables(req.Names); err != nil {
		return s.fail(c, err)
	}

	return c.JSON(Response{
		Success: true,
		Message: "Tables renamed successfully",
	})
}

func (s *Server) handleDeleteTables(c *fiber.Ctx) error {
	var req NameListRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request")
	}

	removed := s.store.DeleteTables(req.Names...)
	return c.JSON(Response{
		Success: true,
		Message: "Deleted " + strconv.Itoa(len(removed)) + " table(s)",
		Data:    removed,
	})
}

func (s *Server) handleSelect(c *fiber.Ctx) error {
	var req SelectRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request")
	}

	if err := s.store.Select(req.Name); err != nil {
		return s.fail(c, err)
	}

	return c.JSON(Response{
		Success: true,
		Data:    s.store.Active(),
	})
}

func (s *Server) handleAddColumns(c *fiber.Ctx) error {
	var req NamesRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request")
	}

	added, err := s.store.AddColumns(tableParam(c), req.Names)
	if err != nil {
		return s.fail(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(Response{
		Success: true,
		Message: "Columns added successfully",
		Data:    added,
	})
}

func (s *Server) handleRenameColumns(c *fiber.Ctx) error {
	var req NameListRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request")
	}

	if err := s.store.RenameColumns(tableParam(c), req.Names); err != nil {
		return s.fail(c, err)
	}

	return c.JSON(Response{
		Success: true,
		Message: "Columns renamed successfully",
	})
}

func (s *Server) handleDeleteColumns(c *fiber.Ctx) error {
	var req NameListRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request")
	}

	if err := s.store.DeleteColumns(tableParam(c), req.Names...); err != nil {
		return s.fail(c, err)
	}

	return c.JSON(Response{
		Success: true,
		Message: "Columns deleted successfully",
	})
}

func (s *Server) handleAddRow(c *fiber.Ctx) error {
	var req RowRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request")
	}

	if err := s.store.AddRow(tableParam(c), req.Data); err != nil {
		return s.fail(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(Response{
		Success: true,
		Message: "Row added successfully",
	})
}

func (s *Server) handleEditRow(c *fiber.Ctx) error {
	index, err := c.ParamsInt("index")
	if err != nil {
		return badRequest(c, "Invalid row index")
	}

	var req RowRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request")
	}

	if err := s.store.EditRow(tableParam(c), index, req.Data); err != nil {
		return s.fail(c, err)
	}

	return c.JSON(Response{
		Success: true,
		Message: "Row updated successfully",
	})
}

func (s *Server) handleDeleteRow(c *fiber.Ctx) error {
	index, err := c.ParamsInt("index")
	if err != nil {
		return badRequest(c, "Invalid row index")
	}

	if err := s.store.DeleteRow(tableParam(c), index); err != nil {
		return s.fail(c, err)
	}

	return c.JSON(Response{
		Success: true,
		Message: "Row deleted successfully",
	})
}

func (s *Server) handleGetStats(c *fiber.Ctx) error {
	return c.JSON(Response{
		Success: true,
		Data:    s.service.GetStats(),
	})
}

func (s *Server) handleExport(c *fiber.Ctx) error {
	snap := s.store.Snapshot()

	switch format := c.Query("format", export.FormatJSON); format {
	case export.FormatJSON:
		out, err := export.JSON(snap)
		if err != nil {
			return s.fail(c, err)
		}
		c.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSONCharsetUTF8)
		return c.SendString(out)
	case export.FormatYAML:
		out, err := export.YAML(snap)
		if err != nil {
			return s.fail(c, err)
		}
		c.Set(fiber.HeaderContentType, "application/yaml; charset=utf-8")
		return c.SendString(out)
	default:
		return badRequest(c, "Unsupported export format: "+format)
	}
}
