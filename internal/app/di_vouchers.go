package app

import (
	"fmt"

	"github.com/allisson/vouchers/internal/delivery"
	vouchersHTTP "github.com/allisson/vouchers/internal/vouchers/http"
	vouchersRepository "github.com/allisson/vouchers/internal/vouchers/repository"
	vouchersService "github.com/allisson/vouchers/internal/vouchers/service"
	vouchersUseCase "github.com/allisson/vouchers/internal/vouchers/usecase"
)

// TokenGenerator returns the voucher token generator instance.
func (c *Container) TokenGenerator() (vouchersService.TokenGenerator, error) {
	c.tokenGeneratorInit.Do(func() {
		c.tokenGenerator = vouchersService.NewHexTokenGenerator()
	})
	return c.tokenGenerator, nil
}

// VoucherRepository returns the voucher repository instance for the configured driver.
func (c *Container) VoucherRepository() (vouchersUseCase.VoucherRepository, error) {
	c.voucherRepoInit.Do(func() {
		var err error
		c.voucherRepo, err = c.initVoucherRepository()
		if err != nil {
			c.initErrors["voucherRepo"] = err
		}
	})
	if storedErr, exists := c.initErrors["voucherRepo"]; exists {
		return nil, storedErr
	}
	return c.voucherRepo, nil
}

// VoucherUseCase returns the voucher use case instance, wrapped with business metrics.
func (c *Container) VoucherUseCase() (vouchersUseCase.VoucherUseCase, error) {
	c.voucherUseCaseInit.Do(func() {
		var err error
		c.voucherUseCase, err = c.initVoucherUseCase()
		if err != nil {
			c.initErrors["voucherUseCase"] = err
		}
	})
	if storedErr, exists := c.initErrors["voucherUseCase"]; exists {
		return nil, storedErr
	}
	return c.voucherUseCase, nil
}

// Renderer returns the QR code renderer instance.
func (c *Container) Renderer() (delivery.Renderer, error) {
	c.rendererInit.Do(func() {
		c.renderer = delivery.NewQRRenderer()
	})
	return c.renderer, nil
}

// Sender returns the voucher email sender instance.
// Returns nil when SMTP is not configured; issuance then reports delivery as skipped.
func (c *Container) Sender() (delivery.Sender, error) {
	c.senderInit.Do(func() {
		if c.config.SMTPHost == "" {
			return
		}
		c.sender = delivery.NewSMTPSender(delivery.SMTPConfig{
			Host:      c.config.SMTPHost,
			Port:      c.config.SMTPPort,
			Username:  c.config.SMTPUsername,
			Password:  c.config.SMTPPassword,
			From:      c.config.SMTPFrom,
			BrandName: c.config.BrandName,
		})
	})
	return c.sender, nil
}

// VoucherHandler returns the voucher HTTP handler instance.
func (c *Container) VoucherHandler() (*vouchersHTTP.VoucherHandler, error) {
	c.voucherHandlerInit.Do(func() {
		var err error
		c.voucherHandler, err = c.initVoucherHandler()
		if err != nil {
			c.initErrors["voucherHandler"] = err
		}
	})
	if storedErr, exists := c.initErrors["voucherHandler"]; exists {
		return nil, storedErr
	}
	return c.voucherHandler, nil
}

// RedemptionHandler returns the redemption HTTP handler instance.
func (c *Container) RedemptionHandler() (*vouchersHTTP.RedemptionHandler, error) {
	c.redemptionHandlerInit.Do(func() {
		var err error
		c.redemptionHandler, err = c.initRedemptionHandler()
		if err != nil {
			c.initErrors["redemptionHandler"] = err
		}
	})
	if storedErr, exists := c.initErrors["redemptionHandler"]; exists {
		return nil, storedErr
	}
	return c.redemptionHandler, nil
}

// initVoucherRepository creates the voucher repository instance.
func (c *Container) initVoucherRepository() (vouchersUseCase.VoucherRepository, error) {
	db, err := c.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database for voucher repository: %w", err)
	}

	// Select the appropriate repository based on the database driver
	switch c.config.DBDriver {
	case "mysql":
		return vouchersRepository.NewMySQLVoucherRepository(db), nil
	case "postgres":
		return vouchersRepository.NewPostgreSQLVoucherRepository(db), nil
	default:
		return nil, fmt.Errorf("unsupported database driver: %s", c.config.DBDriver)
	}
}

// initVoucherUseCase creates the voucher use case with all its dependencies.
func (c *Container) initVoucherUseCase() (vouchersUseCase.VoucherUseCase, error) {
	txManager, err := c.TxManager()
	if err != nil {
		return nil, fmt.Errorf("failed to get tx manager for voucher use case: %w", err)
	}

	voucherRepo, err := c.VoucherRepository()
	if err != nil {
		return nil, fmt.Errorf("failed to get voucher repository for voucher use case: %w", err)
	}

	tokenGenerator, err := c.TokenGenerator()
	if err != nil {
		return nil, fmt.Errorf("failed to get token generator for voucher use case: %w", err)
	}

	businessMetrics, err := c.BusinessMetrics()
	if err != nil {
		return nil, fmt.Errorf("failed to get business metrics for voucher use case: %w", err)
	}

	useCase := vouchersUseCase.NewVoucherUseCase(txManager, voucherRepo, tokenGenerator)
	return vouchersUseCase.NewVoucherUseCaseWithMetrics(useCase, businessMetrics), nil
}

// initVoucherHandler creates the voucher HTTP handler with all its dependencies.
func (c *Container) initVoucherHandler() (*vouchersHTTP.VoucherHandler, error) {
	voucherUseCase, err := c.VoucherUseCase()
	if err != nil {
		return nil, fmt.Errorf("failed to get voucher use case for voucher handler: %w", err)
	}

	renderer, err := c.Renderer()
	if err != nil {
		return nil, fmt.Errorf("failed to get renderer for voucher handler: %w", err)
	}

	sender, err := c.Sender()
	if err != nil {
		return nil, fmt.Errorf("failed to get sender for voucher handler: %w", err)
	}

	return vouchersHTTP.NewVoucherHandler(voucherUseCase, renderer, sender, c.Logger()), nil
}

// initRedemptionHandler creates the redemption HTTP handler with all its dependencies.
func (c *Container) initRedemptionHandler() (*vouchersHTTP.RedemptionHandler, error) {
	voucherUseCase, err := c.VoucherUseCase()
	if err != nil {
		return nil, fmt.Errorf("failed to get voucher use case for redemption handler: %w", err)
	}

	return vouchersHTTP.NewRedemptionHandler(voucherUseCase, c.Logger()), nil
}
