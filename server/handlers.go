package server

import (
	"mir4tracker/models"

	"github.com/gofiber/fiber/v2"
)

type messageResponse struct {
	Message string `json:"message"`
}

func (s *Server) handleRoot(c *fiber.Ctx) error {
	return c.JSON(messageResponse{Message: "MIR4 Account Manager API"})
}

func (s *Server) handleSchedulerStatus(c *fiber.Ctx) error {
	return c.JSON(s.scheduler.Status())
}

func (s *Server) handleGetPrices(c *fiber.Ctx) error {
	prices, err := s.priceService.GetPrices(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(prices)
}

func (s *Server) handleUpdatePrices(c *fiber.Ctx) error {
	var patch models.PricesPatch
	if err := c.BodyParser(&patch); err != nil {
		return err
	}

	prices, err := s.priceService.UpdatePrices(c.UserContext(), patch)
	if err != nil {
		return err
	}
	return c.JSON(prices)
}

func (s *Server) handleListAccounts(c *fiber.Ctx) error {
	accounts, err := s.accountService.ListAccounts(c.UserContext(), c.Query("search"))
	if err != nil {
		return err
	}
	return c.JSON(accounts)
}

func (s *Server) handleGetAccount(c *fiber.Ctx) error {
	account, err := s.accountService.GetAccount(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(account)
}

func (s *Server) handleCreateAccount(c *fiber.Ctx) error {
	var input models.AccountInput
	if err := c.BodyParser(&input); err != nil {
		return err
	}

	account, err := s.accountService.CreateAccount(c.UserContext(), &input)
	if err != nil {
		return err
	}
	return c.JSON(account)
}

func (s *Server) handleUpdateAccount(c *fiber.Ctx) error {
	var patch models.AccountPatch
	if err := c.BodyParser(&patch); err != nil {
		return err
	}

	account, err := s.accountService.UpdateAccount(c.UserContext(), c.Params("id"), &patch)
	if err != nil {
		return err
	}
	return c.JSON(account)
}

func (s *Server) handleConfirmAccount(c *fiber.Ctx) error {
	account, err := s.accountService.ConfirmAccount(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(account)
}

func (s *Server) handleDeleteAccount(c *fiber.Ctx) error {
	if err := s.accountService.DeleteAccount(c.UserContext(), c.Params("id")); err != nil {
		return err
	}
	return c.JSON(messageResponse{Message: "Account deleted successfully"})
}

func (s *Server) handleGetObjectives(c *fiber.Ctx) error {
	report, err := s.accountService.GetObjectives(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(report)
}

func (s *Server) handleGetStatistics(c *fiber.Ctx) error {
	stats, err := s.statsService.GetStatistics(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(stats)
}
