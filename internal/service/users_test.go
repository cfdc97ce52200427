package service

import (
	"github.com/Victoradukwu/FlightsHub/internal/database"
	"github.com/Victoradukwu/FlightsHub/internal/models"
)

func registration(username string) models.RegisterRequest {
	return models.RegisterRequest{
		FirstName:       "Ada",
		LastName:        "Obi",
		Username:        username,
		Email:           username + "@mail.example.com",
		PhoneNumber:     "+2348012345678",
		Password:        "s3cret!",
		ConfirmPassword: "s3cret!",
	}
}

func (s *ServiceTestSuite) TestRegisterAndLogin() {
	u, err := s.svc.Register(s.ctx, registration("adaobi"))
	s.Require().NoError(err)
	s.Equal(models.RolePassenger, u.Role)
	s.Equal(models.UserActive, u.Status)
	s.NotEqual("s3cret!", u.PasswordHash)

	tok, err := s.svc.Login(s.ctx, models.LoginRequest{Username: "adaobi", Password: "s3cret!"})
	s.Require().NoError(err)
	s.Equal("bearer", tok.TokenType)
	s.Equal(u.ID, tok.User.ID)

	id, err := s.svc.tokens.Parse(tok.AccessToken)
	s.Require().NoError(err)
	s.Equal(u.ID, id)
}

func (s *ServiceTestSuite) TestRegister_Invalid() {
	req := registration("adaobi")
	req.ConfirmPassword = "different"
	_, err := s.svc.Register(s.ctx, req)
	var verr *models.ValidationError
	s.ErrorAs(err, &verr)

	_, err = s.svc.Register(s.ctx, registration("adaobi"))
	s.Require().NoError(err)
	dup := registration("adaobi")
	dup.Email = "other@mail.example.com"
	_, err = s.svc.Register(s.ctx, dup)
	s.ErrorIs(err, database.ErrConflict)
}

func (s *ServiceTestSuite) TestLogin_Rejected() {
	_, err := s.svc.Register(s.ctx, registration("adaobi"))
	s.Require().NoError(err)

	_, err = s.svc.Login(s.ctx, models.LoginRequest{Username: "adaobi", Password: "wrong-password"})
	s.ErrorIs(err, ErrUnauthenticated)
	_, err = s.svc.Login(s.ctx, models.LoginRequest{Username: "nobody", Password: "s3cret!"})
	s.ErrorIs(err, ErrUnauthenticated)
}
