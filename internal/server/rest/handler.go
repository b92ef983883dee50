package rest

import (
	"context"
	"errors"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"

	"github.com/gin-gonic/gin"

	"github.com/streamvault/accountd/internal/common"
	"github.com/streamvault/accountd/internal/server/services"
)

func (s *Server) register(c *gin.Context) {
	avatarPath, err := s.saveUpload(c, "avatar")
	if err != nil {
		s.writeError(c, err)
		return
	}
	coverPath, err := s.saveUpload(c, "cover")
	if err != nil {
		s.writeError(c, err)
		return
	}

	account, err := s.accounts.Register(c.Request.Context(), services.RegisterInput{
		Handle:      c.PostForm("handle"),
		Email:       c.PostForm("email"),
		DisplayName: c.PostForm("display_name"),
		Password:    c.PostForm("password"),
		AvatarPath:  avatarPath,
		CoverPath:   coverPath,
	})
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"data": account})
}

func (s *Server) login(c *gin.Context) {
	var req struct {
		Handle   string `json:"handle"`
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	account, pair, err := s.accounts.Login(c.Request.Context(), services.LoginInput{
		Handle:   req.Handle,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		s.writeError(c, err)
		return
	}

	s.setSessionCookies(c, pair)
	c.JSON(http.StatusOK, gin.H{"data": gin.H{
		"account":       account,
		"access_token":  pair.AccessToken,
		"refresh_token": pair.RefreshToken,
	}})
}

func (s *Server) refresh(c *gin.Context) {
	var req struct {
		RefreshToken string `json:"refresh_token"`
	}
	_ = c.ShouldBindJSON(&req)

	token := req.RefreshToken
	if token == "" {
		token, _ = c.Cookie("refresh_token")
	}

	pair, err := s.sessions.Refresh(c.Request.Context(), token)
	if err != nil {
		s.writeError(c, err)
		return
	}

	s.setSessionCookies(c, pair)
	c.JSON(http.StatusOK, gin.H{"data": gin.H{
		"access_token":  pair.AccessToken,
		"refresh_token": pair.RefreshToken,
	}})
}

func (s *Server) logout(c *gin.Context) {
	if err := s.accounts.Logout(c.Request.Context(), currentAccountID(c)); err != nil {
		s.writeError(c, err)
		return
	}
	s.clearSessionCookies(c)
	c.JSON(http.StatusOK, gin.H{"status": "logged out"})
}

func (s *Server) changePassword(c *gin.Context) {
	var req struct {
		OldPassword string `json:"old_password"`
		NewPassword string `json:"new_password"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := s.accounts.ChangePassword(c.Request.Context(), currentAccountID(c), req.OldPassword, req.NewPassword); err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "password changed"})
}

func (s *Server) updateProfile(c *gin.Context) {
	var req struct {
		DisplayName string `json:"display_name"`
		Email       string `json:"email"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	account, err := s.accounts.UpdateProfile(c.Request.Context(), currentAccountID(c), services.UpdateProfileInput{
		DisplayName: req.DisplayName,
		Email:       req.Email,
	})
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": account})
}

func (s *Server) replaceAvatar(c *gin.Context) {
	s.replaceMedia(c, "avatar", s.accounts.ReplaceAvatar)
}

func (s *Server) replaceCover(c *gin.Context) {
	s.replaceMedia(c, "cover", s.accounts.ReplaceCover)
}

func (s *Server) replaceMedia(c *gin.Context, field string, replace func(ctx context.Context, accountID, localPath string) (*services.ReplaceResult, error)) {
	path, err := s.saveUpload(c, field)
	if err != nil {
		s.writeError(c, err)
		return
	}

	res, err := replace(c.Request.Context(), currentAccountID(c), path)
	if err != nil {
		s.writeError(c, err)
		return
	}

	body := gin.H{"data": res.Account}
	if !res.OldAssetRemoved {
		body["warning"] = "previous " + field + " could not be removed from storage"
	}
	c.JSON(http.StatusOK, body)
}

func (s *Server) me(c *gin.Context) {
	account, err := s.accounts.Current(c.Request.Context(), currentAccountID(c))
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": account})
}

// saveUpload spools the named multipart file into the temp dir and returns
// its local path, or "" when the field is absent.
func (s *Server) saveUpload(c *gin.Context, field string) (string, error) {
	file, err := c.FormFile(field)
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
			return "", nil
		}
		return "", err
	}
	return s.spool(c, file)
}

func (s *Server) spool(c *gin.Context, file *multipart.FileHeader) (string, error) {
	if err := os.MkdirAll(s.tempDir, 0o770); err != nil {
		return "", err
	}
	name, err := common.MakeRandHexString(8)
	if err != nil {
		return "", err
	}
	dst := filepath.Join(s.tempDir, name+filepath.Ext(file.Filename))
	if err := c.SaveUploadedFile(file, dst); err != nil {
		return "", err
	}
	return dst, nil
}

func (s *Server) setSessionCookies(c *gin.Context, pair *services.TokenPair) {
	c.SetCookie("access_token", pair.AccessToken, 0, "/", "", false, true)
	c.SetCookie("refresh_token", pair.RefreshToken, 0, "/", "", false, true)
}

func (s *Server) clearSessionCookies(c *gin.Context) {
	c.SetCookie("access_token", "", -1, "/", "", false, true)
	c.SetCookie("refresh_token", "", -1, "/", "", false, true)
}

// writeError maps a core error to its HTTP status. Internal details are
// logged, not returned.
func (s *Server) writeError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, common.ErrValidation):
		status = http.StatusBadRequest
	case errors.Is(err, common.ErrAuthentication):
		status = http.StatusUnauthorized
	case errors.Is(err, common.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, common.ErrConflict):
		status = http.StatusConflict
	}

	if status == http.StatusInternalServerError {
		s.logger.Error(c.Request.Context(), "request failed", "path", c.FullPath(), "error", err.Error())
		c.JSON(status, gin.H{"error": "internal error"})
		return
	}
	c.JSON(status, gin.H{"error": err.Error()})
}
