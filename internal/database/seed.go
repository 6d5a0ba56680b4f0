package database

import (
	"fmt"
	"log"

	"github.com/dexbook/dexbook/internal/entities"
)

func strptr(s string) *string {
	return &s
}

// seedBooks is the initial catalog shipped with the app. Each UUID matches
// a printed QR code, so they must never change.
var seedBooks = []entities.Book{
	{
		UUID:        strptr("d290f1ee-6c54-4b01-90e6-d701748f0851"),
		Title:       "Harry Potter e a Pedra Filosofal",
		Author:      "J.K. Rowling",
		Genre:       "Fantasia",
		Cover:       "https://m.media-amazon.com/images/I/81ibfYk4qmL._AC_UF1000,1000_QL80_.jpg",
		Pages:       264,
		ISBN:        strptr("9788532530787"),
		Description: "Harry Potter é um garoto órfão que vive infeliz com seus tios, os Dursley. Ele recebe uma carta contendo um convite para ingressar em Hogwarts, uma famosa escola especializada em formar jovens bruxos.",
	},
	{
		UUID:        strptr("c7d5a60a-8fcb-4c6c-a891-836ff3ed40f8"),
		Title:       "1984",
		Author:      "George Orwell",
		Genre:       "Ficção Distópica",
		Cover:       "https://m.media-amazon.com/images/I/819js3EQwbL._AC_UF1000,1000_QL80_.jpg",
		Pages:       416,
		ISBN:        strptr("9788535914849"),
		Description: "Winston Smith é um funcionário público cuja função é reescrever a história de forma a colocar os líderes de seu país sob uma luz positiva.",
	},
	{
		UUID:        strptr("af9e1cf6-ec1f-4b74-8b2d-02cb72c1a6c5"),
		Title:       "O Senhor dos Anéis",
		Author:      "J.R.R. Tolkien",
		Genre:       "Fantasia",
		Cover:       "https://m.media-amazon.com/images/I/71jLBXtWJWL._AC_UF1000,1000_QL80_.jpg",
		Pages:       1178,
		ISBN:        strptr("9788533613379"),
		Description: "Uma aventura épica na Terra-média, onde o hobbit Frodo Bolseiro deve destruir um anel mágico para salvar o mundo.",
	},
	{
		UUID:        strptr("5f64e6df-bc47-45b7-b5c8-89132ed5e073"),
		Title:       "Dom Casmurro",
		Author:      "Machado de Assis",
		Genre:       "Romance",
		Cover:       "https://m.media-amazon.com/images/I/71Q0XW32yXL._AC_UF1000,1000_QL80_.jpg",
		Pages:       256,
		ISBN:        strptr("9788544001080"),
		Description: "Bentinho narra sua vida, desde a infância até a maturidade, e sua relação com Capitu.",
	},
	{
		UUID:        strptr("9c97b1a7-bdd8-42e3-b1b2-0db7a32a92cf"),
		Title:       "O Pequeno Príncipe",
		Author:      "Antoine de Saint-Exupéry",
		Genre:       "Fábula",
		Cover:       "https://m.media-amazon.com/images/I/71OZY035FKL._AC_UF1000,1000_QL80_.jpg",
		Pages:       96,
		ISBN:        strptr("9788595081499"),
		Description: "Um piloto cai com seu avião no deserto e encontra um pequeno príncipe vindo de outro planeta.",
	},
	{
		UUID:        strptr("b8e9ab2d-21a9-47ef-a2cb-1e9c90362a44"),
		Title:       "A Culpa é das Estrelas",
		Author:      "John Green",
		Genre:       "Romance",
		Cover:       "https://m.media-amazon.com/images/I/71g6xZREFYL._AC_UF1000,1000_QL80_.jpg",
		Pages:       288,
		ISBN:        strptr("9788580573466"),
		Description: "Hazel e Gus compartilham humor ácido, um desprezo por tudo que é convencional e, acima de tudo, amor.",
	},
	{
		UUID:        strptr("682d7f86-f013-46e4-b4b9-601f23632c6a"),
		Title:       "O Hobbit",
		Author:      "J.R.R. Tolkien",
		Genre:       "Fantasia",
		Cover:       "https://m.media-amazon.com/images/I/91M9xPIf10L._AC_UF1000,1000_QL80_.jpg",
		Pages:       310,
		ISBN:        strptr("9788595084742"),
		Description: "Bilbo Bolseiro é convocado pelo mago Gandalf para participar de uma aventura com treze anões.",
	},
	{
		UUID:        strptr("93710c3f-9d7a-4d5a-9b08-b6e4cfac5a9d"),
		Title:       "Percy Jackson: O Ladrão de Raios",
		Author:      "Rick Riordan",
		Genre:       "Aventura",
		Cover:       "https://m.media-amazon.com/images/I/91WN6a6F3LL._AC_UF1000,1000_QL80_.jpg",
		Pages:       400,
		ISBN:        strptr("9788580575071"),
		Description: "Percy Jackson descobre ser um semideus e precisa impedir uma guerra entre os deuses do Olimpo.",
	},
	{
		UUID:        strptr("edc8150e-dc54-4e3e-a939-cb45023166b1"),
		Title:       "As Crônicas de Nárnia",
		Author:      "C.S. Lewis",
		Genre:       "Fantasia",
		Cover:       "https://m.media-amazon.com/images/I/71yJLhQekBL._AC_UF1000,1000_QL80_.jpg",
		Pages:       767,
		ISBN:        strptr("9788578277123"),
		Description: "Quatro irmãos descobrem um mundo mágico dentro de um guarda-roupa.",
	},
	{
		UUID:        strptr("3b3e278d-dc6b-4cf7-bb7a-6e1a8156d51d"),
		Title:       "O Código Da Vinci",
		Author:      "Dan Brown",
		Genre:       "Suspense",
		Cover:       "https://m.media-amazon.com/images/I/71y4V9RBs8L._AC_UF1000,1000_QL80_.jpg",
		Pages:       432,
		ISBN:        strptr("9788580411379"),
		Description: "Robert Langdon investiga um assassinato no Museu do Louvre que revela segredos históricos.",
	},
}

// seedCatalog inserts the initial catalog exactly once. Skipped whenever the
// catalog already has rows, so re-invocation stays idempotent.
func (d *Database) seedCatalog() error {
	var count int64
	if err := d.DB.Model(&entities.Book{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	log.Printf("Seeding initial catalog with %d books", len(seedBooks))
	for _, book := range seedBooks {
		book := book
		if err := d.DB.Create(&book).Error; err != nil {
			return fmt.Errorf("failed to seed book %q: %w", book.Title, err)
		}
	}
	return nil
}
