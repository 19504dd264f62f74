package models

import "time"

// Product represents a product in the catalogue.
type Product struct {
	ID           string     `json:"_id" bson:"_id" gorm:"primaryKey;type:varchar(36)"`
	Nome         string     `json:"nome" bson:"nome" gorm:"column:nome;type:varchar(100);not null"`
	Descricao    string     `json:"descricao" bson:"descricao" gorm:"column:descricao;type:varchar(1000)"`
	Quantidade   int        `json:"quantidade" bson:"quantidade" gorm:"column:quantidade"`
	Preco        float64    `json:"preco" bson:"preco" gorm:"column:preco;not null"`
	Desconto     float64    `json:"desconto" bson:"desconto" gorm:"column:desconto"`
	DataDesconto *time.Time `json:"dataDesconto,omitempty" bson:"dataDesconto,omitempty" gorm:"column:dataDesconto"`
	Categoria    string     `json:"categoria" bson:"categoria" gorm:"column:categoria;type:varchar(50);index;not null"`
	Imagem       string     `json:"imagem" bson:"imagem" gorm:"column:imagem"`
}

// TableName pins the table name used by GORM.
func (Product) TableName() string {
	return "produtos"
}

// ProductInput is the request body accepted by create and update.
// Optional attributes are pointers so that an update can tell "absent"
// from "zero".
type ProductInput struct {
	Nome         string     `json:"nome" validate:"required,min=1,max=100"`
	Descricao    *string    `json:"descricao" validate:"omitempty,max=1000"`
	Quantidade   *int       `json:"quantidade" validate:"omitempty,gte=0"`
	Preco        float64    `json:"preco" validate:"required,gt=0"`
	Desconto     *float64   `json:"desconto" validate:"omitempty,gte=0,lte=100"`
	DataDesconto *time.Time `json:"dataDesconto"`
	Categoria    string     `json:"categoria" validate:"required,min=1,max=50"`
	Imagem       *string    `json:"imagem" validate:"omitempty,url"`
}

// ToProduct builds a new Product carrying the given identifier.
func (in ProductInput) ToProduct(id string) Product {
	p := Product{
		ID:           id,
		Nome:         in.Nome,
		Preco:        in.Preco,
		Categoria:    in.Categoria,
		DataDesconto: in.DataDesconto,
	}
	if in.Descricao != nil {
		p.Descricao = *in.Descricao
	}
	if in.Quantidade != nil {
		p.Quantidade = *in.Quantidade
	}
	if in.Desconto != nil {
		p.Desconto = *in.Desconto
	}
	if in.Imagem != nil {
		p.Imagem = *in.Imagem
	}
	return p
}

// Fields returns the attributes an update writes, keyed by their stored
// name. Required attributes are always present; optional ones only when
// supplied.
func (in ProductInput) Fields() map[string]interface{} {
	fields := map[string]interface{}{
		"nome":      in.Nome,
		"preco":     in.Preco,
		"categoria": in.Categoria,
	}
	if in.Descricao != nil {
		fields["descricao"] = *in.Descricao
	}
	if in.Quantidade != nil {
		fields["quantidade"] = *in.Quantidade
	}
	if in.Desconto != nil {
		fields["desconto"] = *in.Desconto
	}
	if in.DataDesconto != nil {
		fields["dataDesconto"] = *in.DataDesconto
	}
	if in.Imagem != nil {
		fields["imagem"] = *in.Imagem
	}
	return fields
}

// Apply writes the fields of an update onto an existing product.
func (in ProductInput) Apply(p *Product) {
	p.Nome = in.Nome
	p.Preco = in.Preco
	p.Categoria = in.Categoria
	if in.Descricao != nil {
		p.Descricao = *in.Descricao
	}
	if in.Quantidade != nil {
		p.Quantidade = *in.Quantidade
	}
	if in.Desconto != nil {
		p.Desconto = *in.Desconto
	}
	if in.DataDesconto != nil {
		d := *in.DataDesconto
		p.DataDesconto = &d
	}
	if in.Imagem != nil {
		p.Imagem = *in.Imagem
	}
}

// ProductFilter narrows a listing. Zero-valued fields are ignored and the
// remaining constraints are combined with AND.
type ProductFilter struct {
	Nome      string   // case-insensitive substring
	Categoria string   // exact match
	PrecoMin  *float64 // inclusive
	PrecoMax  *float64 // inclusive
}

// IsEmpty reports whether the filter matches every product.
func (f ProductFilter) IsEmpty() bool {
	return f.Nome == "" && f.Categoria == "" && f.PrecoMin == nil && f.PrecoMax == nil
}
