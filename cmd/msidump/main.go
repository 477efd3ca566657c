package main

import (
	"fmt"
	"os"
	"time"

	msi "github.com/asalih/go-msi"
)

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintln(os.Stderr, "usage: msidump <file.msi> [...]")
		os.Exit(1)
	}

	for _, path := range os.Args[1:] {
		doc, err := msi.OpenFile(path)
		if err != nil {
			fmt.Fprintf(os.Stderr, "%s: %v\n", path, err)
			continue
		}

		dump(path, doc)
		doc.Close()
	}
}

func dump(path string, doc *msi.Document) {
	meta := doc.Metadata()
	fmt.Printf("%s (%s)\n", path, msi.SizeToString(meta.TotalSize))

	printField("Title", meta.Title)
	printField("Subject", meta.Subject)
	printField("Author", meta.Author)
	printField("Revision", meta.RevisionNumber)
	printField("Creating App", meta.CreatingApp)
	if meta.CreateTime != 0 {
		printField("Created", time.Unix(meta.CreateTime, 0).UTC().Format(time.RFC3339))
	}
	if meta.LastSaveTime != 0 {
		printField("Last Saved", time.Unix(meta.LastSaveTime, 0).UTC().Format(time.RFC3339))
	}

	if tables := doc.Tables(); len(tables) > 0 {
		fmt.Println("Tables:")
		for _, table := range tables {
			fmt.Printf("  %-32s %d rows\n", table.Name, table.RowCount)
		}
	}

	if files := doc.Files(); len(files) > 0 {
		fmt.Println("Files:")
		for _, file := range files {
			fmt.Printf("  %s\\%s (%s)\n", file.Directory, file.Name, msi.SizeToString(uint64(file.Size)))
		}
	}

	fmt.Println("Streams:")
	printTree(doc, doc.Root(), "  ")
}

func printField(name, value string) {
	if value != "" {
		fmt.Printf("  %-12s %s\n", name+":", value)
	}
}

func printTree(doc *msi.Document, entry *msi.Entry, indent string) {
	for _, id := range entry.Children {
		child := doc.Entry(id)
		if child == nil {
			continue
		}

		if child.ObjType == msi.Stream {
			fmt.Printf("%s%s (%s)\n", indent, child.DecodedName, msi.SizeToString(child.StreamSize))
		} else {
			fmt.Printf("%s%s/\n", indent, child.DecodedName)
			printTree(doc, child, indent+"  ")
		}
	}
}
