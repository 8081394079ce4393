package handler

import (
	"github.com/99minutos/storefront-accounts/internal/core/domain"
	"github.com/99minutos/storefront-accounts/internal/core/ports"
)

func toAccountResponse(a *domain.Account) accountResponse {
	return accountResponse{
		ID:          a.ID,
		Username:    a.Username,
		Email:       a.Email,
		Name:        a.Name,
		Mobile:      a.Mobile,
		IsActive:    a.IsActive,
		IsStaff:     a.IsStaff,
		IsSuperuser: a.IsSuperuser,
		CreatedAt:   a.CreatedAt,
	}
}

func toAddressResponse(a *domain.Address) addressResponse {
	return addressResponse{
		ID:           a.ID,
		FullName:     a.FullName,
		Phone:        a.Phone,
		AddressLine:  a.AddressLine,
		AddressLine2: a.AddressLine2,
		TownCity:     a.TownCity,
		Postcode:     a.Postcode,
		CreatedAt:    a.CreatedAt,
		UpdatedAt:    a.UpdatedAt,
	}
}

func toAddressInput(r addressRequest) ports.AddressInput {
	return ports.AddressInput{
		FullName:     r.FullName,
		Phone:        r.Phone,
		AddressLine:  r.AddressLine,
		AddressLine2: r.AddressLine2,
		TownCity:     r.TownCity,
		Postcode:     r.Postcode,
	}
}
