package cmd

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"shelf/domain/catalog"
	"shelf/service"
)

var menuCmd = &cobra.Command{
	Use:   "menu [input...]",
	Short: "Browse the catalog from an interactive menu",
	Long: `Menu opens the same catalog serve does and offers author and ISBN
search, borrowing, returns and the current popular books. Arguments, if
given, are consumed as the menu's input in order; the menu exits when they
run out.`,
	RunE: runMenu,
}

func init() {
	rootCmd.AddCommand(menuCmd)
}

func runMenu(cmd *cobra.Command, args []string) error {
	if logLevel == "" {
		logLevel = "warn"
	}
	cfg, logger, err := loadConfig()
	if err != nil {
		return err
	}

	rt, err := openRuntime(cfg, logger)
	if err != nil {
		return err
	}

	menuErr := NewMenu(rt.svc, cmd.InOrStdin(), cmd.OutOrStdout(), args).Run()
	if err := rt.Close(); err != nil {
		return err
	}
	return menuErr
}

const maxInputAttempts = 3

// Menu is the text front end. Input comes from a scripted argument list
// when one is given, otherwise from in.
type Menu struct {
	svc    *service.CatalogService
	in     *bufio.Scanner
	out    io.Writer
	script []string
	next   int
}

func NewMenu(svc *service.CatalogService, in io.Reader, out io.Writer, script []string) *Menu {
	if in == nil {
		in = os.Stdin
	}
	return &Menu{
		svc:    svc,
		in:     bufio.NewScanner(in),
		out:    out,
		script: script,
	}
}

func (m *Menu) Run() error {
	m.println("Welcome to the shelf library.")
	st := m.svc.Stats()
	m.printf("%d books available, %d borrowed.\n", st.Available, st.Borrowed)

	for {
		m.printf("\nEnter 'author' to search by author, 'isbn' to search by ISBN, " +
			"'popular' to see the top books, 'return' to return a book, or 'exit' to leave: ")

		switch strings.ToLower(m.nonEmptyInput()) {
		case "author":
			m.authorSearch()
		case "isbn":
			m.isbnSearch()
		case "popular":
			m.popular()
		case "return":
			m.returnBook()
		case "exit", "":
			m.println("\nGoodbye.")
			return nil
		default:
			m.println("")
		}
	}
}

func (m *Menu) authorSearch() {
	m.printf("\nSearch by author. Enter the author name: ")
	b, err := m.svc.LookupByAuthor(m.nonEmptyInput())
	m.showAndOfferBorrow(b, err)
}

func (m *Menu) isbnSearch() {
	m.printf("\nSearch by ISBN. Enter the ISBN: ")
	b, err := m.svc.LookupByISBN(m.int64Input())
	m.showAndOfferBorrow(b, err)
}

func (m *Menu) showAndOfferBorrow(b catalog.Book, err error) {
	if err != nil {
		m.println("\nSorry, no books matched your search.")
		return
	}
	m.println("\nThis book matched your search:")
	m.println(b.String())

	m.printf("\nWould you like to borrow it? (y/n) ")
	if m.yesNoInput() {
		if err := m.svc.Borrow(b); err != nil {
			m.printf("\nSorry, the book could not be borrowed: %v\n", err)
			return
		}
		m.println("\nEnjoy the book.")
	}
}

func (m *Menu) popular() {
	p, err := m.svc.Popular()
	if err != nil {
		m.println("\nSorry, there are no popular books that are not already borrowed.")
		return
	}
	m.println("")
	for _, b := range []*catalog.Book{p.ByAuthor, p.ByISBN} {
		if b != nil {
			m.println(b.String())
		}
	}
}

func (m *Menu) returnBook() {
	m.printf("\nEnter the author of the book you are returning: ")
	if _, err := m.svc.Return(m.nonEmptyInput()); err != nil {
		m.println("\nSorry, no borrowed book has that author.")
		return
	}
	m.println("\nThank you for returning this book.")
}

// ---- input ----

// input returns the next line, or "exit" once the input is exhausted.
func (m *Menu) input() string {
	if len(m.script) > 0 {
		if m.next >= len(m.script) {
			return "exit"
		}
		s := m.script[m.next]
		m.next++
		m.printf("%s\n", s)
		return s
	}
	if !m.in.Scan() {
		return "exit"
	}
	return strings.TrimSpace(m.in.Text())
}

func (m *Menu) nonEmptyInput() string {
	s := m.input()
	for i := 0; i < maxInputAttempts && s == ""; i++ {
		m.printf("\nOops! Please enter something: ")
		s = m.input()
	}
	return s
}

// int64Input gives up after maxInputAttempts and returns 0.
func (m *Menu) int64Input() int64 {
	for i := 0; i < maxInputAttempts; i++ {
		v, err := strconv.ParseInt(m.nonEmptyInput(), 10, 64)
		if err == nil {
			return v
		}
		m.printf("\nOops! Please enter a number: ")
	}
	return 0
}

// yesNoInput defaults to no.
func (m *Menu) yesNoInput() bool {
	for i := 0; i < maxInputAttempts; i++ {
		switch m.nonEmptyInput() {
		case "y":
			return true
		case "n":
			return false
		}
		m.printf("\nOops! Please enter y or n: ")
	}
	return false
}

func (m *Menu) println(s string) {
	fmt.Fprintln(m.out, s)
}

func (m *Menu) printf(format string, args ...any) {
	fmt.Fprintf(m.out, format, args...)
}
